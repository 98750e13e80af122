package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{"cmd", "-a", "http://files.local:9090", "-t", "10"}, expectPanic: false,
			expected: &Config{ServerURL: "http://files.local:9090", RequestTimeout: 10 * time.Second}},
		{name: "Test2 foreign flags ignored", args: []string{"cmd", "-d", "x.db", "-t", "5"}, expectPanic: false,
			expected: &Config{RequestTimeout: 5 * time.Second}},
		{name: "Test3 incorrect timeout", args: []string{"cmd", "-a", "http://files.local", "-t", "abc"}, expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
