package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabasePath        string
	ScoringConfigPath   string
	LogLevel            string
	FeedRefreshSchedule string
	Port                int
	FeedSeed            int64
	FeedAccounts        int
	FeedOpportunities   int
	DevMode             bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnvAsInt("PORT", 8080),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		DatabasePath:        getEnv("DATABASE_PATH", "./data/salesintel.db"),
		ScoringConfigPath:   getEnv("SCORING_CONFIG_PATH", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		FeedRefreshSchedule: getEnv("FEED_REFRESH_SCHEDULE", "@hourly"),
		FeedSeed:            getEnvAsInt64("FEED_SEED", 42),
		FeedAccounts:        getEnvAsInt("FEED_ACCOUNTS", 120),
		FeedOpportunities:   getEnvAsInt("FEED_OPPORTUNITIES", 60),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.FeedAccounts <= 0 {
		return fmt.Errorf("FEED_ACCOUNTS must be greater than 0")
	}
	if c.FeedOpportunities < 0 {
		return fmt.Errorf("FEED_OPPORTUNITIES must not be negative")
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
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
