// Package auth signs and verifies the JWTs used as first-party session
// tokens.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/omhauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the session owner in Subject and a random ID so that two
// tokens issued in the same second still differ.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// GenerateSessionToken signs a token for username valid until expiresAt.
func GenerateSessionToken(username string, secretKey []byte, issuedAt, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username: username,
	})

	return token.SignedString(secretKey)
}

// ParseSessionToken verifies the signature and expiry of tokenString at
// now and returns the username it was issued to.
func ParseSessionToken(tokenString string, secretKey []byte, now time.Time) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Username == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Username, nil
}
