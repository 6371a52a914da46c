// Package thirdparties stores registered OAuth clients.
package thirdparties

import (
	"github.com/dmitrijs2005/omhauth/internal/server/models"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/credstore"
)

// Repository registers and resolves third parties by ID.
type Repository interface {
	credstore.Inserter[models.ThirdParty]
	credstore.Finder[models.ThirdParty]
}
