package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Contains(t, c.DatabaseDSN, "cloudstore.db")
	assert.Equal(t, "secretKey", c.SecretKey)
	assert.Equal(t, 30*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, "storage", c.StorageRoot)
	assert.Equal(t, int64(10*1024*1024), c.MaxFileSize)
	assert.Equal(t, 3, c.DefaultListLimit)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "slog", c.LogBackend)
	require.NoError(t, c.Validate())
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	origDotEnv := loadDotEnv
	loadDotEnv = func() error { return nil }
	t.Cleanup(func() { loadDotEnv = origDotEnv })

	path := writeTempJSON(t, "", "", map[string]any{
		"http_addr":          "127.0.0.1:7000",
		"storage_root":       "/json/root",
		"default_list_limit": 7,
	})

	t.Setenv("STORAGE_ROOT", "/env/root")
	t.Setenv("SECRET_KEY", "env-secret")

	os.Args = []string{"testbin", "-c", path, "-s", "flag-secret"}

	c, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7000", c.HTTPAddr)
	assert.Equal(t, "/env/root", c.StorageRoot)
	assert.Equal(t, "flag-secret", c.SecretKey)
	assert.Equal(t, 7, c.DefaultListLimit)
	assert.Equal(t, int64(10<<20), c.MaxFileSize)
}

func TestLoadConfig_Invalid(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	origDotEnv := loadDotEnv
	loadDotEnv = func() error { return nil }
	t.Cleanup(func() { loadDotEnv = origDotEnv })

	os.Args = []string{"testbin", "-o", "logrus"}

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{}
	base.LoadDefaults()

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "bad addr", mutate: func(c *Config) { c.HTTPAddr = "nope" }},
		{name: "empty dsn", mutate: func(c *Config) { c.DatabaseDSN = "" }},
		{name: "empty secret", mutate: func(c *Config) { c.SecretKey = "" }},
		{name: "zero validity", mutate: func(c *Config) { c.AccessTokenValidityDuration = 0 }},
		{name: "empty root", mutate: func(c *Config) { c.StorageRoot = "" }},
		{name: "zero max size", mutate: func(c *Config) { c.MaxFileSize = 0 }},
		{name: "negative limit", mutate: func(c *Config) { c.DefaultListLimit = -1 }},
		{name: "bad level", mutate: func(c *Config) { c.LogLevel = "loud" }},
		{name: "bad backend", mutate: func(c *Config) { c.LogBackend = "logrus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
