package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Open connects to the database named by dsn and returns it together with
// the matching RepositoryManager. Postgres URLs and keyword DSNs use pgx;
// everything else is handed to the SQLite driver. Migrations are not run.
func Open(ctx context.Context, dsn string) (*sql.DB, RepositoryManager, error) {
	driver, m := "sqlite", NewSQLiteRepositoryManager()
	if isPostgres(dsn) {
		driver, m = "pgx", NewPostgresRepositoryManager()
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == "sqlite" {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return db, m, nil
}

// pgKeywords are the libpq connection keywords accepted in key=value DSNs.
var pgKeywords = map[string]bool{
	"host": true, "hostaddr": true, "port": true, "dbname": true, "user": true,
	"password": true, "sslmode": true, "connect_timeout": true, "application_name": true,
}

// isPostgres reports whether dsn is a postgres URL or a keyword DSN such as
// "host=db user=app dbname=store".
func isPostgres(dsn string) bool {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return true
	}

	fields := strings.Fields(dsn)
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		key, _, ok := strings.Cut(f, "=")
		if !ok || !pgKeywords[key] {
			return false
		}
	}
	return true
}
