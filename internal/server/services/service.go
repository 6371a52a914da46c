// Package services implements the credential lifecycle: first-party
// sessions, authorization codes, resource owner verification and
// third-party access credentials. Services are stateless and safe for
// concurrent use; every invariant is enforced through conditional inserts
// in the repositories.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/omhauth/internal/common"
	"github.com/dmitrijs2005/omhauth/internal/dbx"
)

// withTx runs fn in a transaction. Without a database (memory mode) fn runs
// directly against the in-process stores.
func withTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if db == nil {
		// Nothing is rolled back here: a racer that loses the marker insert
		// leaves its credential stored, though its tokens are never returned.
		return fn(ctx, nil)
	}
	return dbx.WithTx(ctx, db, nil, fn)
}

// storeWithRetry calls try until it stores a record under a fresh key.
// Only key collisions are retried.
func storeWithRetry(ctx context.Context, attempts int, try func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		err := try(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, common.ErrDuplicateKey) {
			return err
		}
	}
	return reject(ReasonTokenGenerationExhausted, "no free key after %d attempts", attempts)
}

// storeError classifies an unexpected repository error.
func storeError(op string, err error) error {
	if errors.Is(err, common.ErrStoreCorruption) {
		return &Error{Reason: ReasonStoreCorruption, Detail: op, Err: err}
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return fmt.Errorf("error %s: %w", op, err)
}

func newRandomToken() (string, error) {
	return common.MakeRandHexString(32)
}
