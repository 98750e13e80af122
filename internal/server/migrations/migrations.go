// Package migrations embeds the goose SQL migrations, one directory per
// supported database.
package migrations

import "embed"

//go:embed postgres/*.sql
var Postgres embed.FS

//go:embed sqlite/*.sql
var SQLite embed.FS
