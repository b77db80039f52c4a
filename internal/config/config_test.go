package config

import (
	"testing"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `uptrace-dsn="https://token@api.uptrace.dev/1"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev/1" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_ScoringDefaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("STATS_WIN_POINTS", "")
	t.Setenv("STATS_TIE_POINTS", "")
	t.Setenv("STATS_FORM_WINDOW", "")
	t.Setenv("STATS_MALFORMED_THRESHOLD", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.WinPoints != 2 {
		t.Fatalf("unexpected default WinPoints: %d", cfg.WinPoints)
	}
	if cfg.TiePoints != 1 {
		t.Fatalf("unexpected default TiePoints: %d", cfg.TiePoints)
	}
	if cfg.FormWindow != 10 {
		t.Fatalf("unexpected default FormWindow: %d", cfg.FormWindow)
	}
	if cfg.MalformedThreshold != 0.25 {
		t.Fatalf("unexpected default MalformedThreshold: %v", cfg.MalformedThreshold)
	}
}

func TestLoad_ScoringValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("tie points above win points", func(t *testing.T) {
		t.Setenv("STATS_WIN_POINTS", "2")
		t.Setenv("STATS_TIE_POINTS", "3")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when STATS_TIE_POINTS > STATS_WIN_POINTS")
		}
	})

	t.Run("three point win", func(t *testing.T) {
		t.Setenv("STATS_WIN_POINTS", "3")
		t.Setenv("STATS_TIE_POINTS", "1")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.WinPoints != 3 {
			t.Fatalf("unexpected WinPoints: %d", cfg.WinPoints)
		}
	})

	t.Run("threshold out of range", func(t *testing.T) {
		t.Setenv("STATS_WIN_POINTS", "")
		t.Setenv("STATS_TIE_POINTS", "")
		t.Setenv("STATS_MALFORMED_THRESHOLD", "1.5")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for STATS_MALFORMED_THRESHOLD > 1")
		}
	})
}

func TestLoad_ComputeWorkersValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default", func(t *testing.T) {
		t.Setenv("STATS_COMPUTE_WORKERS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.ComputeWorkers != 4 {
			t.Fatalf("unexpected default ComputeWorkers: %d", cfg.ComputeWorkers)
		}
	})

	t.Run("zero workers", func(t *testing.T) {
		t.Setenv("STATS_COMPUTE_WORKERS", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for STATS_COMPUTE_WORKERS=0")
		}
	})
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "rinkstats-engine-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "rinkstats-engine-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_DBDisablePreparedBinaryResultParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default true", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.DBDisablePreparedBinary {
			t.Fatalf("expected DBDisablePreparedBinary=true by default")
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "not-bool")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid DB_DISABLE_PREPARED_BINARY_RESULT")
		}
	})
}

func TestLoad_LogLevelParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LogLevel.String() != "warn" {
		t.Fatalf("unexpected LogLevel: %s", cfg.LogLevel.String())
	}
}
