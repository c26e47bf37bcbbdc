package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ErrInvalidConfig is returned when the loaded configuration cannot be used
var ErrInvalidConfig = errors.New("invalid config")

// envPaths are probed in order; the first existing file is loaded
var envPaths = []string{".env", "../.env", "../../.env"}

// Config holds the process configuration
type Config struct {
	Port             string
	DatabaseURL      string
	DataPath         string
	LogLevel         string
	GinMode          string
	DefaultTeamCount int
}

// Load reads an optional .env file and then the environment
func Load() (*Config, error) {
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, p, err)
			}
			break
		}
	}

	teamCount, err := strconv.Atoi(getEnv("DEFAULT_TEAM_COUNT", "2"))
	if err != nil {
		return nil, fmt.Errorf("%w: DEFAULT_TEAM_COUNT: %v", ErrInvalidConfig, err)
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8000"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DataPath:         getEnv("DATA_PATH", "club.db"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		GinMode:          getEnv("GIN_MODE", "release"),
		DefaultTeamCount: teamCount,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures required fields are present
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("%w: port is required", ErrInvalidConfig)
	}
	if c.DatabaseURL == "" && c.DataPath == "" {
		return fmt.Errorf("%w: DATABASE_URL or DATA_PATH is required", ErrInvalidConfig)
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("%w: unknown GIN_MODE %q", ErrInvalidConfig, c.GinMode)
	}
	if c.DefaultTeamCount < 2 {
		return fmt.Errorf("%w: DEFAULT_TEAM_COUNT must be at least 2", ErrInvalidConfig)
	}
	return nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
