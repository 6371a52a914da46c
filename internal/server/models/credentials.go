package models

import "time"

// SessionToken is a first-party login credential.
type SessionToken struct {
	Token     string    `db:"token"`
	Username  string    `db:"username"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

// AuthorizationCode is a one-time code issued to a third party for a set
// of scopes.
type AuthorizationCode struct {
	Code         string    `db:"code"`
	ThirdPartyID string    `db:"third_party_id"`
	Scopes       []string  `db:"scopes"`
	State        string    `db:"state"`
	CreatedAt    time.Time `db:"created_at"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// Expired reports whether the code is past its expiration at now.
func (c *AuthorizationCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Verification is the resource owner's decision for a code. There is at
// most one per code.
type Verification struct {
	Code      string    `db:"code"`
	Username  string    `db:"username"`
	Granted   bool      `db:"granted"`
	CreatedAt time.Time `db:"created_at"`
}

// AuthorizationToken is an access/refresh credential pair held by a third
// party on behalf of a user.
type AuthorizationToken struct {
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	Username     string    `db:"username"`
	ThirdPartyID string    `db:"third_party_id"`
	Scopes       []string  `db:"scopes"`
	Code         string    `db:"code"`
	CreatedAt    time.Time `db:"created_at"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// ExpiresIn returns the remaining lifetime at now, never negative.
func (t *AuthorizationToken) ExpiresIn(now time.Time) time.Duration {
	d := t.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// CodeExchange marks an authorization code as exchanged. Its key is the
// code, so a second exchange cannot be recorded.
type CodeExchange struct {
	Code        string    `db:"code"`
	AccessToken string    `db:"access_token"`
	CreatedAt   time.Time `db:"created_at"`
}

// TokenRotation marks a refresh token as used. Its key is the superseded
// refresh token; AccessToken names the successor credential.
type TokenRotation struct {
	RefreshToken string    `db:"refresh_token"`
	AccessToken  string    `db:"access_token"`
	CreatedAt    time.Time `db:"created_at"`
}
