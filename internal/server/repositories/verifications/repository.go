// Package verifications stores resource owner decisions on authorization
// codes. A code has at most one verification.
package verifications

import (
	"github.com/dmitrijs2005/omhauth/internal/server/models"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/credstore"
)

type Repository interface {
	credstore.Inserter[models.Verification]
	credstore.Finder[models.Verification]
}

func NewMemoryRepository() *credstore.Memory[models.Verification] {
	return credstore.NewMemory(func(v *models.Verification) string { return v.Code }, nil)
}
