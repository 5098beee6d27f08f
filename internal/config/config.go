package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"cdpvals/internal"
	"cdpvals/internal/errors"

	"github.com/joho/godotenv"
)

// Defaults applied when the environment is silent
const (
	DefaultIterations = 100000
	DefaultSeed       = 42
	DefaultLogLevel   = "INFO"
)

// Config represents the complete library configuration
type Config struct {
	Competitive CompetitiveConfig
	Logging     LoggingConfig
}

// CompetitiveConfig holds settings for the permutation-style test
type CompetitiveConfig struct {
	Iterations int    // Null draws when no reference matrix is supplied
	Seed       uint64 // Seed of the synthetic reference stream
	Workers    int    // Concurrent chunks of the null loop
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level string
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Competitive: CompetitiveConfig{
			Iterations: DefaultIterations,
			Seed:       DefaultSeed,
			Workers:    runtime.GOMAXPROCS(0),
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Load reads an optional .env file, then environment variables, and validates
// the result. Extra file names replace the default ".env".
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		internal.DefaultLogger.Debug("No .env file loaded (%v), using system environment variables", err)
	}

	defaults := Default()
	config := &Config{
		Competitive: CompetitiveConfig{
			Iterations: getEnvIntOrDefault("CDPVALS_ITERATIONS", defaults.Competitive.Iterations),
			Seed:       getEnvUint64OrDefault("CDPVALS_SEED", defaults.Competitive.Seed),
			Workers:    getEnvIntOrDefault("CDPVALS_WORKERS", defaults.Competitive.Workers),
		},
		Logging: LoggingConfig{
			Level: strings.ToUpper(getEnvOrDefault("LOG_LEVEL", defaults.Logging.Level)),
		},
	}

	if err := Validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// Validate checks ranges of every field
func Validate(config *Config) error {
	if config.Competitive.Iterations < 1 {
		return errors.ConfigInvalid(fmt.Sprintf("CDPVALS_ITERATIONS must be >= 1, got %d", config.Competitive.Iterations))
	}
	if config.Competitive.Workers < 1 {
		return errors.ConfigInvalid(fmt.Sprintf("CDPVALS_WORKERS must be >= 1, got %d", config.Competitive.Workers))
	}
	if _, ok := validLevels[config.Logging.Level]; !ok {
		return errors.ConfigInvalid(fmt.Sprintf("LOG_LEVEL %q is not one of ERROR, WARN, INFO, DEBUG, TRACE", config.Logging.Level))
	}
	return nil
}

var validLevels = map[string]struct{}{
	"ERROR": {}, "WARN": {}, "INFO": {}, "DEBUG": {}, "TRACE": {},
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvUint64OrDefault(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if uintValue, err := strconv.ParseUint(value, 10, 64); err == nil {
			return uintValue
		}
	}
	return defaultValue
}
