// Package credstore declares the generic credential store contract that the
// per-kind repositories implement, and an in-memory implementation of it.
//
// Contract:
//   - StoreIfAbsent fails with common.ErrDuplicateKey when the key (or any
//     other unique field) is taken; the check and the insert are atomic.
//   - Find returns the record for a key or common.ErrorNotFound.
//   - FindFresh additionally requires ExpiresAt to be strictly after now.
//   - A lookup that matches more than one record fails with
//     common.ErrStoreCorruption.
//
// There is no update or delete: records are immutable once stored.
package credstore

import (
	"context"
	"time"
)

// Inserter stores records of kind T if their key is free.
type Inserter[T any] interface {
	StoreIfAbsent(ctx context.Context, rec *T) error
}

// Finder looks records up by key regardless of expiry.
type Finder[T any] interface {
	Find(ctx context.Context, key string) (*T, error)
}

// FreshFinder looks records up by key, skipping expired ones.
type FreshFinder[T any] interface {
	FindFresh(ctx context.Context, key string, now time.Time) (*T, error)
}
