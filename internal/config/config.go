package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents application configuration, read from the environment.
type Config struct {
	DatabaseURL    string
	ServerHost     string
	ServerPort     string
	Environment    string
	JWTSecret      string
	AccessTokenTTL time.Duration

	RedisURL               string
	RateLimitEnabled       bool
	RateLimitAttempts      int
	RateLimitWindow        time.Duration
	RateLimitBlockDuration time.Duration

	LogLevel  string
	LogFormat string
}

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	ErrMissingJWTSecret   = errors.New("JWT_SECRET is required")
)

// Load reads configuration from the environment, with a .env file as a
// development convenience.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		ServerHost:             getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort:             getEnv("SERVER_PORT", "8080"),
		Environment:            getEnv("ENVIRONMENT", "development"),
		JWTSecret:              os.Getenv("JWT_SECRET"),
		AccessTokenTTL:         getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RedisURL:               getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RateLimitEnabled:       getBool("RATE_LIMIT_ENABLED", false),
		RateLimitAttempts:      getInt("RATE_LIMIT_ATTEMPTS", 100),
		RateLimitWindow:        getDuration("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitBlockDuration: getDuration("RATE_LIMIT_BLOCK_DURATION", 15*time.Minute),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogFormat:              getEnv("LOG_FORMAT", "json"),
	}

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
