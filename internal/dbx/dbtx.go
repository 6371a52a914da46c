// Package dbx provides the small database layer shared by repositories:
// a minimal interface (DBTX) implemented by both *sql.DB and *sql.Tx, a
// helper to run functions inside a transaction, and the two primitives the
// credential store contract is built on (conditional insert and singular
// keyed lookup).
package dbx

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/omhauth/internal/common"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    if err := m.CodeExchanges(tx).StoreIfAbsent(ctx, ex); err != nil {
//	        return err
//	    }
//	    return m.AuthTokens(tx).StoreIfAbsent(ctx, token)
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

// InsertIfAbsent executes a conditional insert, normally of the form
// "INSERT ... ON CONFLICT DO NOTHING". The check and the insert are a single
// statement, so two concurrent callers with the same key cannot both win.
// Zero affected rows is reported as common.ErrDuplicateKey.
func InsertIfAbsent(ctx context.Context, db DBTX, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if n == 0 {
		return common.ErrDuplicateKey
	}
	return nil
}

// Scanner is implemented by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// QuerySingle runs a keyed query that must match at most one row.
//
// No rows yields common.ErrorNotFound. More than one row yields
// common.ErrStoreCorruption: a second match means a uniqueness invariant was
// broken somewhere else and the caller must not silently pick a row.
func QuerySingle[T any](ctx context.Context, db DBTX, scan func(Scanner) (*T, error), query string, args ...any) (*T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var found *T
	for rows.Next() {
		if found != nil {
			return nil, common.ErrStoreCorruption
		}
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		found = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if found == nil {
		return nil, common.ErrorNotFound
	}
	return found, nil
}
