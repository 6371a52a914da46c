// Package tokenrotations records refresh tokens that have been exchanged
// for a successor credential. A refresh token rotates at most once.
package tokenrotations

import (
	"github.com/dmitrijs2005/omhauth/internal/server/models"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/credstore"
)

type Repository interface {
	credstore.Inserter[models.TokenRotation]
	credstore.Finder[models.TokenRotation]
}

func NewMemoryRepository() *credstore.Memory[models.TokenRotation] {
	return credstore.NewMemory(func(r *models.TokenRotation) string { return r.RefreshToken }, nil)
}
