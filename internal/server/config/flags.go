package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/cloudstore/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   database DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-f string   storage root directory
//	-m int      maximum upload size, bytes
//	-n int      default list limit
//	-l string   log level
//	-o string   log backend (slog|zap)
//
// os.Args is first filtered down to these flags with flagx.FilterArgs, so
// -c/-config and flags of other components do not trip the parser.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-f", "-m", "-n", "-l", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.StorageRoot, "f", config.StorageRoot, "storage root directory")
	fs.Int64Var(&config.MaxFileSize, "m", config.MaxFileSize, "maximum upload size in bytes")
	fs.IntVar(&config.DefaultListLimit, "n", config.DefaultListLimit, "default list limit")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogBackend, "o", config.LogBackend, "log backend (slog|zap)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
}
