// Package models defines server-side data models persisted in the database.
// Credential records are immutable once stored.
package models

import "time"

// User is a resource owner. Username is stored trimmed.
type User struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// ThirdParty is a registered OAuth client. ID and Secret are opaque and
// compared by exact match.
type ThirdParty struct {
	ID          string    `db:"id"`
	Secret      string    `db:"secret"`
	RedirectURI string    `db:"redirect_uri"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

// Schema is one version of a registered data schema. Scopes name schema IDs.
type Schema struct {
	ID      string `db:"id"`
	Version int64  `db:"version"`
}
