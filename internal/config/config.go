// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSymbols is the list the divfinder CLI ranks when none is configured.
var DefaultSymbols = []string{"KO", "JNJ", "PG", "PEP", "XOM", "CVX", "MCD", "T", "VZ", "PFE"}

// Config holds application configuration
type Config struct {
	Port         int
	LogLevel     string
	DevMode      bool
	DatabasePath string
	ChartDir     string

	Yahoo YahooConfig
	R2    R2Config

	ProjectionHorizon  int
	RankingConcurrency int
	RankingSchedule    string // cron spec; empty disables the job
	CheckpointSchedule string
	DivfinderSymbols   []string
}

// YahooConfig configures the market-data client.
type YahooConfig struct {
	BaseURL    string
	SessionURL string
	Timeout    time.Duration
	RatePerSec float64
	Burst      int
}

// R2Config holds Cloudflare R2 credentials for chart publishing.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
}

// Enabled reports whether any R2 setting is present.
func (c R2Config) Enabled() bool {
	return c.AccountID != "" || c.AccessKeyID != "" || c.SecretAccessKey != "" ||
		c.BucketName != "" || c.PublicURL != ""
}

func (c R2Config) complete() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.SecretAccessKey != "" &&
		c.BucketName != "" && c.PublicURL != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnvAsInt("GO_PORT", 8001),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		DatabasePath: getEnv("DATABASE_PATH", "./data/divscout.db"),
		ChartDir:     getEnv("CHART_DIR", "./static/charts"),
		Yahoo: YahooConfig{
			BaseURL:    getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			SessionURL: getEnv("YAHOO_SESSION_URL", "https://fc.yahoo.com"),
			Timeout:    getEnvAsDuration("YAHOO_TIMEOUT", 20*time.Second),
			RatePerSec: getEnvAsFloat("YAHOO_RATE_PER_SEC", 5),
			Burst:      getEnvAsInt("YAHOO_BURST", 5),
		},
		R2: R2Config{
			AccountID:       getEnv("R2_ACCOUNT_ID", ""),
			AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
			BucketName:      getEnv("R2_BUCKET_NAME", ""),
			PublicURL:       getEnv("R2_PUBLIC_URL", ""),
		},
		ProjectionHorizon:  getEnvAsInt("PROJECTION_HORIZON", 5),
		RankingConcurrency: getEnvAsInt("RANKING_CONCURRENCY", 4),
		RankingSchedule:    getEnv("RANKING_SCHEDULE", ""),
		CheckpointSchedule: getEnv("CHECKPOINT_SCHEDULE", "0 0 * * * *"),
		DivfinderSymbols:   getEnvAsList("DIVFINDER_SYMBOLS", DefaultSymbols),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("GO_PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.ProjectionHorizon < 1 {
		return fmt.Errorf("PROJECTION_HORIZON must be at least 1, got %d", c.ProjectionHorizon)
	}
	if c.RankingConcurrency < 1 {
		return fmt.Errorf("RANKING_CONCURRENCY must be at least 1, got %d", c.RankingConcurrency)
	}
	if c.Yahoo.RatePerSec <= 0 {
		return fmt.Errorf("YAHOO_RATE_PER_SEC must be positive")
	}
	if c.Yahoo.Burst < 1 {
		return fmt.Errorf("YAHOO_BURST must be at least 1")
	}
	if c.R2.Enabled() && !c.R2.complete() {
		return fmt.Errorf("R2 chart publishing needs R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_BUCKET_NAME and R2_PUBLIC_URL")
	}
	if len(c.DivfinderSymbols) == 0 {
		return fmt.Errorf("DIVFINDER_SYMBOLS must list at least one symbol")
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.ToUpper(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}
