package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/cloudstore/internal/flagx"
	"github.com/dmitrijs2005/cloudstore/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// Durations use timex.Duration, so both "30m" and integer nanoseconds parse.
// Absent keys leave the corresponding Config field untouched.
type JsonConfig struct {
	HTTPAddr                    *string         `json:"http_addr"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	StorageRoot                 *string         `json:"storage_root"`
	MaxFileSize                 *int64          `json:"max_file_size"`
	DefaultListLimit            *int            `json:"default_list_limit"`
	LogLevel                    *string         `json:"log_level"`
	LogBackend                  *string         `json:"log_backend"`
}

// parseJson loads configuration values from the JSON file named by the -c or
// -config flag. Without the flag nothing is loaded. An unreadable file or
// invalid JSON panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.ConfigFileFromArgs()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setIf(&config.HTTPAddr, c.HTTPAddr)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	setIf(&config.StorageRoot, c.StorageRoot)
	setIf(&config.MaxFileSize, c.MaxFileSize)
	setIf(&config.DefaultListLimit, c.DefaultListLimit)
	setIf(&config.LogLevel, c.LogLevel)
	setIf(&config.LogBackend, c.LogBackend)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
