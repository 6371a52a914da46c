package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// MemoryDSNPrefix selects the in-process stores instead of PostgreSQL.
const MemoryDSNPrefix = "memory://"

// openDB is a seam for testing sql.Open.
var openDB = sql.Open

// Open returns a database handle and the matching manager for dsn. In
// memory mode the handle is nil and services run without transactions.
func Open(ctx context.Context, dsn string) (*sql.DB, RepositoryManager, error) {
	if strings.HasPrefix(dsn, MemoryDSNPrefix) {
		return nil, NewMemoryRepositoryManager(), nil
	}

	db, err := openDB("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, NewPostgresRepositoryManager(), nil
}
