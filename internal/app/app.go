package app

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/rinkstats/internal/config"
	"github.com/riskibarqy/rinkstats/internal/domain/stats"
	"github.com/riskibarqy/rinkstats/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/rinkstats/internal/infrastructure/repository/postgres"
	idgen "github.com/riskibarqy/rinkstats/internal/platform/id"
	"github.com/riskibarqy/rinkstats/internal/platform/logging"
	"github.com/riskibarqy/rinkstats/internal/usecase"
)

// Engine bundles the wired compute service with the snapshot reader
// backing it. Reader is nil in memory mode only when no writer doubles
// as one.
type Engine struct {
	Compute *usecase.ComputeService
	Reader  stats.Reader
	db      *sqlx.DB
}

// Close releases the database handle when one was opened.
func (e *Engine) Close() error {
	if e == nil || e.db == nil {
		return nil
	}
	return e.db.Close()
}

// BuildEngine wires repositories and the compute service. An empty
// DB_URL selects in-memory stores seeded with a demo season, which is
// the dev mode used by compute --dry-run without a database.
func BuildEngine(cfg config.Config, logger *logging.Logger) (*Engine, error) {
	if logger == nil {
		logger = logging.Default()
	}

	computeCfg := usecase.ComputeConfig{
		WinPoints:          cfg.WinPoints,
		TiePoints:          cfg.TiePoints,
		FormWindow:         cfg.FormWindow,
		MalformedThreshold: cfg.MalformedThreshold,
	}

	if cfg.DBURL == "" {
		store := memory.NewRawStore(memory.SeedBundle())
		writer := memory.NewStatsWriter()
		svc := usecase.NewComputeService(store, writer, idgen.NewRandomGenerator(), logger, computeCfg)
		logger.Info("engine built", "mode", "memory")
		return &Engine{Compute: svc, Reader: writer}, nil
	}

	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Connect("postgres", dbURL,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dbURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, err
	}

	store := postgres.NewRawStore(db)
	writer := postgres.NewStatsWriter(db)
	reader := postgres.NewStatsReader(db)
	svc := usecase.NewComputeService(store, writer, idgen.NewRandomGenerator(), logger, computeCfg)
	logger.Info("engine built", "mode", "postgres", "db", dbNameFromURL(dbURL))

	return &Engine{Compute: svc, Reader: reader, db: db}, nil
}
