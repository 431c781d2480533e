package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DataFile  string
	DBSource  string
	Port      string
	Env       string
	LogLevel  string
	AuthUsers string
	Location  *time.Location
}

// Load reads the API server configuration. AUTH_USERS is required.
func Load(envFiles ...string) (*Config, error) {
	cfg, err := LoadBase(envFiles...)
	if err != nil {
		return nil, err
	}
	if cfg.AuthUsers == "" {
		return nil, fmt.Errorf("AUTH_USERS environment variable is required")
	}
	return cfg, nil
}

// LoadBase reads the settings shared by every command, without requiring
// credentials. Variables from envFiles (default ".env") are applied first
// without overriding anything already set; a missing env file is not an error.
func LoadBase(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	loc := time.Local
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
		}
		loc = l
	}

	return &Config{
		DataFile:  getenv("DATA_FILE", "data/transactions.json"),
		DBSource:  os.Getenv("DB_SOURCE"),
		Port:      getenv("SERVER_PORT", "8080"),
		Env:       getenv("ENVIRONMENT", "development"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
		AuthUsers: os.Getenv("AUTH_USERS"),
		Location:  loc,
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
