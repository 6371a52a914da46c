// Package sessiontokens stores first-party session tokens.
package sessiontokens

import (
	"time"

	"github.com/dmitrijs2005/omhauth/internal/server/models"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/credstore"
)

// Repository stores session tokens and resolves unexpired ones.
type Repository interface {
	credstore.Inserter[models.SessionToken]
	credstore.FreshFinder[models.SessionToken]
}

// NewMemoryRepository returns an in-process Repository.
func NewMemoryRepository() *credstore.Memory[models.SessionToken] {
	return credstore.NewMemory(
		func(t *models.SessionToken) string { return t.Token },
		func(t *models.SessionToken) time.Time { return t.ExpiresAt },
	)
}
