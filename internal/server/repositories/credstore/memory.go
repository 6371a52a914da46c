package credstore

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/omhauth/internal/common"
)

// Memory is a map-backed store for one record kind. It is safe for
// concurrent use; StoreIfAbsent holds the write lock across the existence
// check and the insert.
type Memory[T any] struct {
	mu      sync.RWMutex
	key     func(*T) string
	expires func(*T) time.Time
	unique  []func(*T) string
	records map[string]*T
}

// NewMemory builds a store keyed by key. expires may be nil for kinds that
// never expire, in which case FindFresh behaves like Find. unique lists
// additional fields that must not repeat across records.
func NewMemory[T any](key func(*T) string, expires func(*T) time.Time, unique ...func(*T) string) *Memory[T] {
	return &Memory[T]{
		key:     key,
		expires: expires,
		unique:  unique,
		records: make(map[string]*T),
	}
}

func (m *Memory[T]) StoreIfAbsent(ctx context.Context, rec *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	k := m.key(rec)
	if _, ok := m.records[k]; ok {
		return common.ErrDuplicateKey
	}
	for _, field := range m.unique {
		v := field(rec)
		for _, existing := range m.records {
			if field(existing) == v {
				return common.ErrDuplicateKey
			}
		}
	}

	c := *rec
	m.records[k] = &c
	return nil
}

func (m *Memory[T]) Find(ctx context.Context, key string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *rec
	return &c, nil
}

func (m *Memory[T]) FindFresh(ctx context.Context, key string, now time.Time) (*T, error) {
	rec, err := m.Find(ctx, key)
	if err != nil {
		return nil, err
	}
	if m.expires != nil && !m.expires(rec).After(now) {
		return nil, common.ErrorNotFound
	}
	return rec, nil
}

// FindBy returns the single record whose field equals value. Several
// matches yield common.ErrStoreCorruption.
func (m *Memory[T]) FindBy(ctx context.Context, field func(*T) string, value string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var found *T
	for _, rec := range m.records {
		if field(rec) != value {
			continue
		}
		if found != nil {
			return nil, common.ErrStoreCorruption
		}
		found = rec
	}
	if found == nil {
		return nil, common.ErrorNotFound
	}
	c := *found
	return &c, nil
}

// Filter returns copies of all records accepted by keep.
func (m *Memory[T]) Filter(ctx context.Context, keep func(*T) bool) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*T, 0)
	for _, rec := range m.records {
		if keep(rec) {
			c := *rec
			out = append(out, &c)
		}
	}
	return out, nil
}

// Len reports the number of stored records.
func (m *Memory[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
