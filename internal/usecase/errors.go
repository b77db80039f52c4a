package usecase

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrPrerequisiteMissing = errors.New("prerequisite missing")
	ErrMalformedInput      = errors.New("malformed input")
	ErrTransactionFailure  = errors.New("transaction failure")
)
