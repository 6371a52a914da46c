// Package common defines shared constants and sentinel errors used across
// the server, repositories and the admin tool. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrDuplicateKey is returned by conditional inserts when a record with
	// the same key already exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrStoreCorruption is returned when a keyed lookup matches more than
	// one record. It must never be resolved by picking one of the rows.
	ErrStoreCorruption = errors.New("store corruption: key matched more than one record")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
