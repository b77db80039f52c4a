package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/rinkstats/internal/app"
	"github.com/riskibarqy/rinkstats/internal/config"
	"github.com/riskibarqy/rinkstats/internal/observability"
	"github.com/riskibarqy/rinkstats/internal/platform/logging"
	"github.com/riskibarqy/rinkstats/internal/usecase"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		seasonsFlag  = flag.String("seasons", "", "comma separated season ids to recompute (required)")
		divisionFlag = flag.String("division", "", "restrict the run to one division id")
		dryRunFlag   = flag.Bool("dry-run", false, "compute and report without writing")
		workersFlag  = flag.Int("workers", 0, "max concurrent seasons (default from STATS_COMPUTE_WORKERS)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	logger := logging.NewJSON(cfg.LogLevel).With(
		"service", cfg.ServiceName,
		"env", cfg.AppEnv,
	)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	seasons := splitSeasons(*seasonsFlag)
	if len(seasons) == 0 {
		fmt.Fprintln(os.Stderr, "usage: compute -seasons <id>[,<id>...] [-division <id>] [-dry-run] [-workers n]")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		return 1
	}
	defer func() {
		if err := shutdownUptrace(context.Background()); err != nil {
			logger.Warn("shutdown uptrace", "error", err)
		}
	}()

	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		return 1
	}
	defer func() {
		if err := stopProfiler(); err != nil {
			logger.Warn("stop pyroscope", "error", err)
		}
	}()

	engine, err := app.BuildEngine(cfg, logger)
	if err != nil {
		logger.Error("build engine", "error", err)
		return 1
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Warn("close engine", "error", err)
		}
	}()

	inputs := make([]usecase.ComputeInput, 0, len(seasons))
	for _, seasonID := range seasons {
		inputs = append(inputs, usecase.ComputeInput{
			SeasonID:   seasonID,
			DivisionID: *divisionFlag,
			DryRun:     *dryRunFlag,
		})
	}

	workers := *workersFlag
	if workers <= 0 {
		workers = cfg.ComputeWorkers
	}

	results, err := engine.Compute.ComputeMany(ctx, inputs, workers)
	if err != nil {
		logger.ErrorContext(ctx, "compute failed", "error", err)
		return 1
	}

	encoded, err := sonic.MarshalIndent(results, "", "  ")
	if err != nil {
		logger.Error("encode results", "error", err)
		return 1
	}
	fmt.Println(string(encoded))

	return 0
}

func splitSeasons(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
