package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/rinkstats/internal/domain/season"
	"github.com/riskibarqy/rinkstats/internal/domain/stats"
	idgen "github.com/riskibarqy/rinkstats/internal/platform/id"
	"github.com/riskibarqy/rinkstats/internal/platform/logging"
	"github.com/riskibarqy/rinkstats/internal/platform/resilience"
)

// ComputeConfig tunes one engine instance. Zero values fall back to the
// league defaults.
type ComputeConfig struct {
	WinPoints          int
	TiePoints          int
	FormWindow         int
	MalformedThreshold float64
}

// ComputeInput selects what one run recomputes. An empty DivisionID
// recomputes every division in the season.
type ComputeInput struct {
	SeasonID   string `json:"season_id" validate:"required"`
	DivisionID string `json:"division_id,omitempty"`
	DryRun     bool   `json:"dry_run,omitempty"`
}

// ComputationResult reports what one run produced.
type ComputationResult struct {
	SeasonID     string          `json:"season_id"`
	DivisionID   string          `json:"division_id,omitempty"`
	PlayerRows   int             `json:"player_rows"`
	TeamRows     int             `json:"team_rows"`
	StrengthRows int             `json:"strength_rows"`
	MatchupRows  int             `json:"matchup_rows"`
	Warnings     []stats.Warning `json:"warnings"`
	DryRun       bool            `json:"dry_run,omitempty"`
	DurationMs   int64           `json:"duration_ms"`
}

// ComputeService is the engine's single entry point: it bulk-reads a
// season's raw events, runs the aggregation pipeline in memory and
// commits the derived snapshot atomically. Runs for the same season are
// serialized through a singleflight group.
type ComputeService struct {
	rawStore season.RawStore
	writer   stats.Writer
	idGen    idgen.Generator
	logger   *logging.Logger
	cfg      ComputeConfig
	validate *validator.Validate
	flight   resilience.SingleFlight
	now      func() time.Time
}

func NewComputeService(
	rawStore season.RawStore,
	writer stats.Writer,
	idGen idgen.Generator,
	logger *logging.Logger,
	cfg ComputeConfig,
) *ComputeService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.WinPoints <= 0 {
		cfg.WinPoints = 2
	}
	if cfg.TiePoints <= 0 {
		cfg.TiePoints = 1
	}
	if cfg.FormWindow <= 0 {
		cfg.FormWindow = 10
	}
	if cfg.MalformedThreshold <= 0 {
		cfg.MalformedThreshold = 0.25
	}
	return &ComputeService{
		rawStore: rawStore,
		writer:   writer,
		idGen:    idGen,
		logger:   logger,
		cfg:      cfg,
		validate: validator.New(),
		now:      time.Now,
	}
}

// ComputeAll recomputes one season and commits the result. Identical
// inputs always produce identical rows; a failed run leaves the prior
// season output untouched.
func (s *ComputeService) ComputeAll(ctx context.Context, input ComputeInput) (ComputationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ComputeService.ComputeAll")
	defer span.End()

	if err := s.validate.Struct(input); err != nil {
		return ComputationResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// Keyed by season alone: a division-scoped run must not overlap a
	// full-season run. Callers arriving while a run is in flight share
	// its result.
	key := "compute:" + input.SeasonID
	value, err, _ := s.flight.Do(key, func() (any, error) {
		return s.computeOnce(ctx, input)
	})
	if err != nil {
		return ComputationResult{}, err
	}
	result, _ := value.(ComputationResult)
	return result, nil
}

func (s *ComputeService) computeOnce(ctx context.Context, input ComputeInput) (ComputationResult, error) {
	startedAt := s.now().UTC()
	warnings := &warningList{}

	bundle, err := s.loadBundle(ctx, input.SeasonID)
	if err != nil {
		return ComputationResult{}, err
	}
	if input.DivisionID != "" {
		bundle = filterDivision(bundle, input.DivisionID)
	}

	defaults := scoringValues{Win: s.cfg.WinPoints, Tie: s.cfg.TiePoints}
	aggregated := aggregateSeason(bundle, defaults, warnings)

	form := recentForm(aggregated.finalGames, s.cfg.FormWindow)
	for idx := range aggregated.teams {
		if line, ok := form[aggregated.teams[idx].TeamID]; ok {
			aggregated.teams[idx].LastTen = line.Record
			aggregated.teams[idx].CurrentStreak = line.Streak
		}
	}

	matchups := headToHead(input.SeasonID, aggregated.finalGames, aggregated.goals, aggregated.penalties)

	strengths, err := scheduleStrength(input.SeasonID, aggregated.teams, bundle.Divisions, aggregated.finalGames, defaults, warnings)
	if err != nil {
		return ComputationResult{}, err
	}

	if fraction := warnings.malformedFraction(); fraction > s.cfg.MalformedThreshold {
		return ComputationResult{}, fmt.Errorf("%w: %.0f%% of event rows were malformed (threshold %.0f%%)",
			ErrMalformedInput, fraction*100, s.cfg.MalformedThreshold*100)
	}

	snapshot := stats.Snapshot{
		SeasonID:   input.SeasonID,
		DivisionID: input.DivisionID,
		Players:    aggregated.players,
		Teams:      aggregated.teams,
		Strengths:  strengths,
		Matchups:   matchups,
	}

	result := ComputationResult{
		SeasonID:     input.SeasonID,
		DivisionID:   input.DivisionID,
		PlayerRows:   len(snapshot.Players),
		TeamRows:     len(snapshot.Teams),
		StrengthRows: len(snapshot.Strengths),
		MatchupRows:  len(snapshot.Matchups),
		Warnings:     warnings.items,
		DryRun:       input.DryRun,
	}

	if !input.DryRun {
		if err := s.writer.Replace(ctx, snapshot); err != nil {
			s.recordRun(ctx, input.SeasonID, stats.RunStatusFailed, startedAt, result)
			return ComputationResult{}, fmt.Errorf("%w: %v", ErrTransactionFailure, err)
		}
		s.recordRun(ctx, input.SeasonID, stats.RunStatusSucceeded, startedAt, result)
	}

	result.DurationMs = s.now().UTC().Sub(startedAt).Milliseconds()
	s.logger.InfoContext(ctx, "season computation finished",
		"season_id", input.SeasonID,
		"division_id", input.DivisionID,
		"player_rows", result.PlayerRows,
		"team_rows", result.TeamRows,
		"strength_rows", result.StrengthRows,
		"matchup_rows", result.MatchupRows,
		"warnings", len(result.Warnings),
		"dry_run", input.DryRun,
	)
	return result, nil
}

// loadBundle is the single bulk read of the run: the six raw tables are
// fetched concurrently, then every downstream step works in memory.
func (s *ComputeService) loadBundle(ctx context.Context, seasonID string) (season.Bundle, error) {
	bundle := season.Bundle{SeasonID: seasonID}

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		items, err := s.rawStore.ListDivisions(ctx, seasonID)
		if err != nil {
			return fmt.Errorf("list divisions: %w", err)
		}
		bundle.Divisions = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.rawStore.ListTeams(ctx, seasonID)
		if err != nil {
			return fmt.Errorf("list teams: %w", err)
		}
		bundle.Teams = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.rawStore.ListGames(ctx, seasonID)
		if err != nil {
			return fmt.Errorf("list games: %w", err)
		}
		bundle.Games = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.rawStore.ListGoalEvents(ctx, seasonID)
		if err != nil {
			return fmt.Errorf("list goal events: %w", err)
		}
		bundle.Goals = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.rawStore.ListPenaltyEvents(ctx, seasonID)
		if err != nil {
			return fmt.Errorf("list penalty events: %w", err)
		}
		bundle.Penalties = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.rawStore.ListRosterEntries(ctx, seasonID)
		if err != nil {
			return fmt.Errorf("list roster entries: %w", err)
		}
		bundle.Roster = items
		return nil
	})

	if err := p.Wait(); err != nil {
		return season.Bundle{}, err
	}
	return bundle, nil
}

func (s *ComputeService) recordRun(ctx context.Context, seasonID, status string, startedAt time.Time, result ComputationResult) {
	runID := ""
	if s.idGen != nil {
		if generated, err := s.idGen.NewID(); err == nil {
			runID = generated
		}
	}
	run := stats.RunRecord{
		ID:           runID,
		SeasonID:     seasonID,
		Status:       status,
		StartedAt:    startedAt,
		FinishedAt:   s.now().UTC(),
		PlayerRows:   result.PlayerRows,
		TeamRows:     result.TeamRows,
		StrengthRows: result.StrengthRows,
		MatchupRows:  result.MatchupRows,
		Warnings:     result.Warnings,
	}
	if err := s.writer.RecordRun(ctx, run); err != nil {
		s.logger.WarnContext(ctx, "record computation run", "season_id", seasonID, "error", err)
	}
}

// ComputeMany runs several seasons through a bounded worker pool. Each
// season still computes single-threaded; only distinct seasons overlap.
func (s *ComputeService) ComputeMany(ctx context.Context, inputs []ComputeInput, maxWorkers int) ([]ComputationResult, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	if maxWorkers <= 0 || maxWorkers > len(inputs) {
		maxWorkers = len(inputs)
	}

	workers, err := ants.NewPool(maxWorkers)
	if err != nil {
		return nil, fmt.Errorf("create compute worker pool: %w", err)
	}
	defer workers.Release()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		results  = make([]ComputationResult, len(inputs))
		firstErr error
	)

	for idx, input := range inputs {
		idx, input := idx, input
		wg.Add(1)
		submitErr := workers.Submit(func() {
			defer wg.Done()
			result, runErr := s.ComputeAll(ctx, input)
			mu.Lock()
			defer mu.Unlock()
			if runErr != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("season %s: %w", input.SeasonID, runErr)
				}
				return
			}
			results[idx] = result
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("submit season %s: %w", input.SeasonID, submitErr)
			}
			mu.Unlock()
		}
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// filterDivision narrows a bundle to one division: its teams, the games
// between them and the events of those games.
func filterDivision(bundle season.Bundle, divisionID string) season.Bundle {
	out := season.Bundle{SeasonID: bundle.SeasonID}
	for _, div := range bundle.Divisions {
		if div.ID == divisionID {
			out.Divisions = append(out.Divisions, div)
		}
	}
	for _, team := range bundle.Teams {
		if team.DivisionID == divisionID {
			out.Teams = append(out.Teams, team)
		}
	}
	keptGames := make(map[string]struct{})
	for _, game := range bundle.Games {
		if game.DivisionID != divisionID {
			continue
		}
		out.Games = append(out.Games, game)
		keptGames[game.ID] = struct{}{}
	}
	for _, goal := range bundle.Goals {
		if _, ok := keptGames[goal.GameID]; ok {
			out.Goals = append(out.Goals, goal)
		}
	}
	for _, penalty := range bundle.Penalties {
		if _, ok := keptGames[penalty.GameID]; ok {
			out.Penalties = append(out.Penalties, penalty)
		}
	}
	for _, entry := range bundle.Roster {
		if _, ok := keptGames[entry.GameID]; ok {
			out.Roster = append(out.Roster, entry)
		}
	}
	return out
}
