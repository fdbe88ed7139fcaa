// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              int
	LogLevel          string
	LogFormat         string
	GinMode           string
	CORSAllowedOrigin string
	DataDir           string
	StoreInMemory     bool
	StoreGCInterval   time.Duration
	EngineVersion     string
	RateLimitRPM      int
	RateLimitBurst    int
	MaxBodyBytes      int64
	ShutdownTimeout   time.Duration
}

// Load reads an optional dotenv file and then the environment. Variables
// already set in the environment win over the file. A missing file is not an
// error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from environment variables and defaults.
func FromEnv() *Config {
	cfg := &Config{
		Port:              envOrDefaultInt("ARCHLINT_PORT", 8080),
		LogLevel:          envOrDefault("ARCHLINT_LOG_LEVEL", "info"),
		LogFormat:         envOrDefault("ARCHLINT_LOG_FORMAT", "json"),
		GinMode:           envOrDefault("GIN_MODE", "release"),
		CORSAllowedOrigin: envOrDefault("CORS_ALLOWED_ORIGIN", "*"),
		DataDir:           envOrDefault("ARCHLINT_DATA_DIR", "./data"),
		StoreInMemory:     envOrDefaultBool("ARCHLINT_STORE_IN_MEMORY", false),
		StoreGCInterval:   envOrDefaultDuration("ARCHLINT_STORE_GC_INTERVAL", 10*time.Minute),
		EngineVersion:     envOrDefault("ARCHLINT_ENGINE_VERSION", ""),
		RateLimitRPM:      envOrDefaultInt("ARCHLINT_RATE_LIMIT_RPM", 60),
		RateLimitBurst:    envOrDefaultInt("ARCHLINT_RATE_LIMIT_BURST", 10),
		MaxBodyBytes:      int64(envOrDefaultInt("ARCHLINT_MAX_BODY_BYTES", 1<<20)),
		ShutdownTimeout:   envOrDefaultDuration("ARCHLINT_SHUTDOWN_TIMEOUT", 15*time.Second),
	}
	if cfg.RateLimitBurst < 1 {
		cfg.RateLimitBurst = 1
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	return cfg
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func envOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "y":
		return true
	case "0", "false", "no", "n":
		return false
	default:
		return fallback
	}
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
