// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment and command-line flags.
package config

import (
	"time"
)

// Config holds runtime settings for the cloudstore server.
//
// Fields:
//   - HTTPAddr: bind address of the HTTP API.
//   - DatabaseDSN: a postgres URL or keyword DSN selects PostgreSQL (pgx), anything else is
//     opened as a SQLite DSN.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use the default in prod.
//   - AccessTokenValidityDuration: token lifetime.
//   - StorageRoot: directory under which every user's files are kept.
//   - MaxFileSize: upload limit in bytes.
//   - DefaultListLimit: page size of a listing when the caller gives none.
//   - LogLevel / LogBackend: see logging.New.
type Config struct {
	HTTPAddr                    string        `validate:"required,hostname_port"`
	DatabaseDSN                 string        `validate:"required"`
	SecretKey                   string        `validate:"required"`
	AccessTokenValidityDuration time.Duration `validate:"gt=0"`
	StorageRoot                 string        `validate:"required"`
	MaxFileSize                 int64         `validate:"gt=0"`
	DefaultListLimit            int           `validate:"gt=0"`
	LogLevel                    string        `validate:"loglevel"`
	LogBackend                  string        `validate:"oneof=slog zap"`
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.DatabaseDSN = "file:cloudstore.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 30 * time.Minute
	c.StorageRoot = "storage"
	c.MaxFileSize = 10 << 20
	c.DefaultListLimit = 3
	c.LogLevel = "info"
	c.LogBackend = "slog"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment (and a .env file), and finally
// from command-line flags. The result is validated.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
