package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/rinkstats/internal/platform/logging"
)

// Config stores runtime configuration for the engine.
type Config struct {
	AppEnv                     string
	ServiceName                string
	ServiceVersion             string
	DBURL                      string
	DBDisablePreparedBinary    bool
	WinPoints                  int
	TiePoints                  int
	FormWindow                 int
	MalformedThreshold         float64
	ComputeWorkers             int
	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	LogLevel                   logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	winPoints, err := getEnvAsInt("STATS_WIN_POINTS", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_WIN_POINTS: %w", err)
	}
	if winPoints < 1 {
		return Config{}, fmt.Errorf("STATS_WIN_POINTS must be >= 1")
	}

	tiePoints, err := getEnvAsInt("STATS_TIE_POINTS", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_TIE_POINTS: %w", err)
	}
	if tiePoints < 0 {
		return Config{}, fmt.Errorf("STATS_TIE_POINTS must be >= 0")
	}
	if tiePoints > winPoints {
		return Config{}, fmt.Errorf("STATS_TIE_POINTS must be <= STATS_WIN_POINTS")
	}

	formWindow, err := getEnvAsInt("STATS_FORM_WINDOW", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_FORM_WINDOW: %w", err)
	}
	if formWindow < 1 {
		return Config{}, fmt.Errorf("STATS_FORM_WINDOW must be >= 1")
	}

	malformedThreshold, err := getEnvAsFloat("STATS_MALFORMED_THRESHOLD", 0.25)
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_MALFORMED_THRESHOLD: %w", err)
	}
	if malformedThreshold < 0 || malformedThreshold > 1 {
		return Config{}, fmt.Errorf("STATS_MALFORMED_THRESHOLD must be within [0, 1]")
	}

	computeWorkers, err := getEnvAsInt("STATS_COMPUTE_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_COMPUTE_WORKERS: %w", err)
	}
	if computeWorkers < 1 {
		return Config{}, fmt.Errorf("STATS_COMPUTE_WORKERS must be >= 1")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                getEnv("APP_SERVICE_NAME", "rinkstats-engine"),
		ServiceVersion:             getEnv("APP_SERVICE_VERSION", "dev"),
		DBURL:                      getEnv("DB_URL", ""),
		DBDisablePreparedBinary:    dbDisablePreparedBinary,
		WinPoints:                  winPoints,
		TiePoints:                  tiePoints,
		FormWindow:                 formWindow,
		MalformedThreshold:         malformedThreshold,
		ComputeWorkers:             computeWorkers,
		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
		LogLevel:                   parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
