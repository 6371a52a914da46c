// Package authcodes stores authorization codes issued to third parties.
package authcodes

import (
	"time"

	"github.com/dmitrijs2005/omhauth/internal/server/models"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/credstore"
)

// Repository stores codes. Find ignores expiry so that the verification
// step can tell an expired code apart from an unknown one.
type Repository interface {
	credstore.Inserter[models.AuthorizationCode]
	credstore.Finder[models.AuthorizationCode]
	credstore.FreshFinder[models.AuthorizationCode]
}

func NewMemoryRepository() *credstore.Memory[models.AuthorizationCode] {
	return credstore.NewMemory(
		func(c *models.AuthorizationCode) string { return c.Code },
		func(c *models.AuthorizationCode) time.Time { return c.ExpiresAt },
	)
}
