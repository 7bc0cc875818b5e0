// Package config provides configuration loading and validation for the
// Crewdeck engine runner. It uses koanf to merge environment variables with
// optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the engine runner.
type Config struct {
	// Server settings (admin listener: /health and /metrics only)
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Database
	DatabaseURL string `koanf:"database_url"`

	// Redis (optional; feed cache invalidation is disabled when empty)
	RedisAddr string `koanf:"redis_addr"`

	// Engine scheduling
	RankingInterval    time.Duration `koanf:"ranking_interval"`
	SimilarityInterval time.Duration `koanf:"similarity_interval"`
	EngineTimeout      time.Duration `koanf:"engine_timeout"`

	// Engine parameters
	SimilarityDim int `koanf:"similarity_dim"`
	RankingTopN   int `koanf:"ranking_top_n"`

	// Reward level thresholds: ascending point boundaries for levels 1..5.
	// A creator at or above thresholds[i] is at least level i+1.
	LevelThresholds []int `koanf:"level_thresholds"`

	// Tracing
	TracingEnabled      bool    `koanf:"tracing_enabled"`
	TracingExporterType string  `koanf:"tracing_exporter_type"`
	OTLPEndpoint        string  `koanf:"otlp_endpoint"`
	TracingSamplingRate float64 `koanf:"tracing_sampling_rate"`
}

// Configuration validation errors.
var (
	ErrMissingDatabaseURL       = errors.New("DATABASE_URL is required")
	ErrInvalidPort              = errors.New("PORT must be a valid integer")
	ErrInvalidInterval          = errors.New("engine intervals must be positive durations")
	ErrInvalidSimilarityDim     = errors.New("SIMILARITY_DIM must be a positive integer")
	ErrInvalidRankingTopN       = errors.New("RANKING_TOP_N must be a positive integer")
	ErrInvalidLevelThresholds   = errors.New("LEVEL_THRESHOLDS must be five strictly ascending integers")
	ErrInvalidSamplingRate      = errors.New("TRACING_SAMPLING_RATE must be between 0 and 1")
	ErrInvalidLevelThresholdCSV = errors.New("LEVEL_THRESHOLDS must be a comma-separated list of integers")
)

// Default values for non-secret configuration.
const (
	DefaultPort               = 8080
	DefaultEnv                = "development"
	DefaultRankingInterval    = 10 * time.Minute
	DefaultSimilarityInterval = 30 * time.Minute
	DefaultEngineTimeout      = 2 * time.Minute
	DefaultSimilarityDim      = 8
	DefaultRankingTopN        = 10
)

// DefaultLevelThresholds returns the default point boundaries for levels 1..5.
func DefaultLevelThresholds() []int {
	return []int{0, 100, 300, 700, 1500}
}

// Load reads configuration from environment variables and an optional config file.
// Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if valid).
// If a config file path is provided and the file cannot be loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	port, portErr := getEnvIntOrDefault("PORT", k.Int("port"), DefaultPort)
	if portErr != nil {
		loadErrs = append(loadErrs, portErr)
	}

	rankingInterval, err := getEnvDurationOrDefault("RANKING_INTERVAL", k.Duration("ranking_interval"), DefaultRankingInterval)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}
	similarityInterval, err := getEnvDurationOrDefault("SIMILARITY_INTERVAL", k.Duration("similarity_interval"), DefaultSimilarityInterval)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}
	engineTimeout, err := getEnvDurationOrDefault("ENGINE_TIMEOUT", k.Duration("engine_timeout"), DefaultEngineTimeout)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}

	similarityDim, err := getEnvIntOrDefault("SIMILARITY_DIM", k.Int("similarity_dim"), DefaultSimilarityDim)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}
	rankingTopN, err := getEnvIntOrDefault("RANKING_TOP_N", k.Int("ranking_top_n"), DefaultRankingTopN)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}

	thresholds, err := getEnvThresholds("LEVEL_THRESHOLDS", k.Ints("level_thresholds"))
	if err != nil {
		loadErrs = append(loadErrs, err)
	}

	samplingRate, err := getEnvFloatOrDefault("TRACING_SAMPLING_RATE", k.Float64("tracing_sampling_rate"), 1.0)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}

	tracingEnabled := k.Bool("tracing_enabled")
	if val := os.Getenv("TRACING_ENABLED"); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes", "on":
			tracingEnabled = true
		case "false", "0", "no", "off":
			tracingEnabled = false
		}
	}

	cfg := &Config{
		Port:                port,
		Env:                 getEnvOrDefaultMulti([]string{"CREWDECK_ENV", "ENV", "GO_ENV"}, k.String("env"), DefaultEnv),
		DatabaseURL:         getEnvOrKoanf("DATABASE_URL", k, "database_url"),
		RedisAddr:           getEnvOrKoanf("REDIS_ADDR", k, "redis_addr"),
		RankingInterval:     rankingInterval,
		SimilarityInterval:  similarityInterval,
		EngineTimeout:       engineTimeout,
		SimilarityDim:       similarityDim,
		RankingTopN:         rankingTopN,
		LevelThresholds:     thresholds,
		TracingEnabled:      tracingEnabled,
		TracingExporterType: getEnvOrKoanf("TRACING_EXPORTER_TYPE", k, "tracing_exporter_type"),
		OTLPEndpoint:        getEnvOrKoanf("OTLP_ENDPOINT", k, "otlp_endpoint"),
		TracingSamplingRate: samplingRate,
	}

	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first non-empty value found, otherwise the koanf value, or default.
func getEnvOrDefaultMulti(envKeys []string, koanfVal string, defaultVal string) string {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvIntOrDefault returns the environment variable as int if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as an integer.
func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", envKey, err)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvFloatOrDefault returns the environment variable as float64 if set, otherwise the koanf value, or default.
func getEnvFloatOrDefault(envKey string, koanfVal float64, defaultVal float64) (float64, error) {
	if val := os.Getenv(envKey); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid float: %w", envKey, err)
		}
		return f, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvDurationOrDefault returns the environment variable as a Duration if set,
// otherwise the koanf value, or default.
func getEnvDurationOrDefault(envKey string, koanfVal time.Duration, defaultVal time.Duration) (time.Duration, error) {
	if val := os.Getenv(envKey); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid duration: %w", envKey, err)
		}
		return d, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvThresholds parses reward level thresholds from the environment
// (comma-separated integers) with the koanf value as fallback, then the default table.
func getEnvThresholds(envKey string, koanfVal []int) ([]int, error) {
	if val := os.Getenv(envKey); val != "" {
		parts := strings.Split(val, ",")
		thresholds := make([]int, 0, len(parts))
		for _, p := range parts {
			i, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return nil, fmt.Errorf("%s: %q: %w", envKey, p, ErrInvalidLevelThresholdCSV)
			}
			thresholds = append(thresholds, i)
		}
		return thresholds, nil
	}
	if len(koanfVal) > 0 {
		return koanfVal, nil
	}
	return DefaultLevelThresholds(), nil
}

// Validate checks that all required configuration values are present and sane.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.DatabaseURL == "" {
		errs = append(errs, ErrMissingDatabaseURL)
	}
	if c.RankingInterval <= 0 || c.SimilarityInterval <= 0 || c.EngineTimeout <= 0 {
		errs = append(errs, ErrInvalidInterval)
	}
	if c.SimilarityDim <= 0 {
		errs = append(errs, ErrInvalidSimilarityDim)
	}
	if c.RankingTopN <= 0 {
		errs = append(errs, ErrInvalidRankingTopN)
	}
	if !validThresholds(c.LevelThresholds) {
		errs = append(errs, ErrInvalidLevelThresholds)
	}
	if c.TracingSamplingRate < 0 || c.TracingSamplingRate > 1 {
		errs = append(errs, ErrInvalidSamplingRate)
	}

	return errs
}

// validThresholds reports whether the level table has exactly five strictly
// ascending entries.
func validThresholds(t []int) bool {
	if len(t) != 5 {
		return false
	}
	for i := 1; i < len(t); i++ {
		if t[i] <= t[i-1] {
			return false
		}
	}
	return true
}

// LogSummary returns a summary of the configuration suitable for logging.
// Secrets are masked to prevent accidental exposure.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":                fmt.Sprintf("%d", c.Port),
		"env":                 c.Env,
		"database_url":        maskDatabaseURL(c.DatabaseURL),
		"redis_addr":          c.RedisAddr,
		"ranking_interval":    c.RankingInterval.String(),
		"similarity_interval": c.SimilarityInterval.String(),
		"engine_timeout":      c.EngineTimeout.String(),
		"similarity_dim":      fmt.Sprintf("%d", c.SimilarityDim),
		"ranking_top_n":       fmt.Sprintf("%d", c.RankingTopN),
		"level_thresholds":    fmt.Sprint(c.LevelThresholds),
		"tracing_enabled":     fmt.Sprintf("%t", c.TracingEnabled),
		"otlp_endpoint":       c.OTLPEndpoint,
	}
}

// maskSecret masks a secret value, showing only the first 4 characters followed by ****
// If the secret is shorter than 8 characters, it's fully masked.
func maskSecret(s string) string {
	if s == "" {
		return "<not set>"
	}
	if len(s) < 8 {
		return "****"
	}
	return s[:4] + "****"
}

// maskDatabaseURL masks the password in a database URL.
// Supports both postgres:// and postgresql:// schemes.
func maskDatabaseURL(s string) string {
	if s == "" {
		return "<not set>"
	}

	schemeEnd := strings.Index(s, "://")
	if schemeEnd == -1 {
		return maskSecret(s)
	}

	rest := s[schemeEnd+3:]
	atIndex := strings.Index(rest, "@")
	if atIndex == -1 {
		return s // No credentials in URL
	}

	colonIndex := strings.Index(rest[:atIndex], ":")
	if colonIndex == -1 {
		return s // No password (only username)
	}

	scheme := s[:schemeEnd+3]
	user := rest[:colonIndex]
	hostAndPath := rest[atIndex:]

	return scheme + user + ":****" + hostAndPath
}
