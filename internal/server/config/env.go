package config

import (
	"time"

	env "github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type envConfig struct {
	HTTPAddr                    string        `env:"SERVER_ADDRESS"`
	DatabaseDSN                 string        `env:"DATABASE_DSN"`
	SecretKey                   string        `env:"SECRET_KEY"`
	AccessTokenValidityDuration time.Duration `env:"ACCESS_TOKEN_VALIDITY"`
	StorageRoot                 string        `env:"STORAGE_ROOT"`
	MaxFileSize                 int64         `env:"MAX_FILE_SIZE"`
	DefaultListLimit            int           `env:"DEFAULT_LIST_LIMIT"`
	LogLevel                    string        `env:"LOG_LEVEL"`
	LogBackend                  string        `env:"LOG_BACKEND"`
}

// loadDotEnv is a seam for tests.
var loadDotEnv = func() error { return godotenv.Load() }

// parseEnv overlays non-empty environment variables. A .env file in the
// working directory is read first when present; it never overrides variables
// that are already set.
func parseEnv(config *Config) error {
	_ = loadDotEnv()

	var v envConfig
	if err := env.Parse(&v); err != nil {
		return err
	}

	if v.HTTPAddr != "" {
		config.HTTPAddr = v.HTTPAddr
	}
	if v.DatabaseDSN != "" {
		config.DatabaseDSN = v.DatabaseDSN
	}
	if v.SecretKey != "" {
		config.SecretKey = v.SecretKey
	}
	if v.AccessTokenValidityDuration != 0 {
		config.AccessTokenValidityDuration = v.AccessTokenValidityDuration
	}
	if v.StorageRoot != "" {
		config.StorageRoot = v.StorageRoot
	}
	if v.MaxFileSize != 0 {
		config.MaxFileSize = v.MaxFileSize
	}
	if v.DefaultListLimit != 0 {
		config.DefaultListLimit = v.DefaultListLimit
	}
	if v.LogLevel != "" {
		config.LogLevel = v.LogLevel
	}
	if v.LogBackend != "" {
		config.LogBackend = v.LogBackend
	}
	return nil
}
