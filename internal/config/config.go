// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds application configuration
type Config struct {
	DataDir        string // Base directory for the record store (always absolute)
	DBName         string
	LogLevel       string
	LogPretty      bool
	Parallelism    int // Concurrent runs for strategy comparison and scenario sweeps
	MaxRisk        float64
	MinQuality     float64
	RequireOA      bool
	Strategy       string
	AutoTimeline   bool   // Derive timeline risk from lifecycle status on recalculation
	RecalcSchedule string // Cron spec with seconds field
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir, err := filepath.Abs(getEnv("REF_DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	cfg := &Config{
		DataDir:        dataDir,
		DBName:         getEnv("REF_DB_NAME", "refportfolio.db"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogPretty:      getEnvAsBool("LOG_PRETTY", true),
		Parallelism:    getEnvAsInt("REF_PARALLELISM", 1),
		MaxRisk:        getEnvAsFloat("REF_MAX_RISK", 0.60),
		MinQuality:     getEnvAsFloat("REF_MIN_QUALITY", 3.0),
		RequireOA:      getEnvAsBool("REF_REQUIRE_OA", true),
		Strategy:       getEnv("REF_STRATEGY", "balanced"),
		AutoTimeline:   getEnvAsBool("REF_AUTO_TIMELINE", false),
		RecalcSchedule: getEnv("REF_RECALC_SCHEDULE", "0 0 2 * * *"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DBPath returns the full path of the SQLite record store.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, c.DBName)
}

// EnsureDataDir creates the data directory if it does not exist.
func (c *Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// Validate checks ranges and the recalculation schedule
func (c *Config) Validate() error {
	if c.DBName == "" {
		return fmt.Errorf("REF_DB_NAME must not be empty")
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("REF_PARALLELISM must be at least 1, got %d", c.Parallelism)
	}
	if c.MaxRisk < 0 || c.MaxRisk > 1 {
		return fmt.Errorf("REF_MAX_RISK must be within [0, 1], got %g", c.MaxRisk)
	}
	if c.MinQuality < 0 || c.MinQuality > 4 {
		return fmt.Errorf("REF_MIN_QUALITY must be within [0, 4], got %g", c.MinQuality)
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.RecalcSchedule); err != nil {
		return fmt.Errorf("invalid REF_RECALC_SCHEDULE %q: %w", c.RecalcSchedule, err)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
