package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rshade/llm-energy-api/internal/scoring"
	"gopkg.in/yaml.v3"
)

// configFileEnvVar names an optional YAML file loaded before the environment.
const configFileEnvVar = "LLM_ENERGY_CONFIG"

// Config holds every setting of the API server. Values come from defaults,
// then the YAML file named by LLM_ENERGY_CONFIG, then environment variables.
type Config struct {
	ListenAddr     string         `yaml:"listen_addr"`
	DataDir        string         `yaml:"data_dir"`
	Scoring        scoring.Config `yaml:"scoring"`
	AllowedOrigins []string       `yaml:"cors_allowed_origins"`
	GRPCHealthAddr string         `yaml:"grpc_health_addr"`
	LogLevel       string         `yaml:"log_level"`
	LogFormat      string         `yaml:"log_format"`
	TestMode       bool           `yaml:"test_mode"`
}

func defaultConfig() Config {
	return Config{
		ListenAddr: ":5000",
		DataDir:    "./data",
		Scoring: scoring.Config{
			IAMURL:         scoring.DefaultIAMURL,
			Version:        scoring.DefaultAPIVersion,
			Timeout:        scoring.DefaultTimeout,
			MaxConcurrency: scoring.DefaultMaxConcurrency,
		},
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// loadConfig builds the configuration. Invalid values are logged and replaced
// by their default; only an unreadable config file is an error.
func loadConfig(logger zerolog.Logger) (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configFileEnvVar); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	setString(&cfg.ListenAddr, "LISTEN_ADDR")
	setString(&cfg.DataDir, "DATA_DIR")
	setString(&cfg.Scoring.URL, "IBM_WML_URL")
	setString(&cfg.Scoring.APIKey, "IBM_WML_APIKEY")
	setString(&cfg.Scoring.SpaceID, "IBM_WML_SPACE_ID")
	setString(&cfg.Scoring.DeploymentID, "IBM_WML_DEPLOYMENT_ID")
	setString(&cfg.Scoring.IAMURL, "IBM_IAM_URL")
	setString(&cfg.GRPCHealthAddr, "GRPC_HEALTH_ADDR")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")

	if v := os.Getenv("SCORING_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			cfg.Scoring.Timeout = parsed
		} else {
			logger.Warn().Str("value", v).Msg("invalid SCORING_TIMEOUT, using default")
		}
	}
	if cfg.Scoring.Timeout <= 0 {
		cfg.Scoring.Timeout = scoring.DefaultTimeout
	}

	if v := os.Getenv("SCORING_MAX_CONCURRENCY"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			cfg.Scoring.MaxConcurrency = parsed
		} else {
			logger.Warn().Str("value", v).Msg("invalid SCORING_MAX_CONCURRENCY, using default")
		}
	}
	if cfg.Scoring.MaxConcurrency <= 0 {
		cfg.Scoring.MaxConcurrency = scoring.DefaultMaxConcurrency
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = strings.Split(v, ",")
	}
	cfg.AllowedOrigins = parseOrigins(cfg.AllowedOrigins, logger)

	if isTestMode(logger) {
		cfg.TestMode = true
	}

	logger.Debug().
		Str("listen_addr", cfg.ListenAddr).
		Str("data_dir", cfg.DataDir).
		Bool("scoring_configured", cfg.Scoring.URL != "" && cfg.Scoring.APIKey != "").
		Dur("scoring_timeout", cfg.Scoring.Timeout).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Msg("Configuration loaded")

	return cfg, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// parseOrigins trims the configured origins. A wildcard anywhere allows every
// origin, which is reported as an empty list.
func parseOrigins(raw []string, logger zerolog.Logger) []string {
	var origins []string
	for _, o := range raw {
		trimmed := strings.TrimSpace(o)
		if trimmed == "*" {
			logger.Warn().Msg("CORS wildcard origin (*) is insecure; use specific origins in production")
			return nil
		}
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// newLogger builds the root logger from the log settings. Unknown levels fall
// back to info with a warning.
func newLogger(cfg Config, out io.Writer) zerolog.Logger {
	if strings.EqualFold(cfg.LogFormat, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	logger := zerolog.New(out).With().Timestamp().Str("service", serviceName).Logger()

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		logger.Warn().Str("value", cfg.LogLevel).Msg("invalid LOG_LEVEL, using info")
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}
