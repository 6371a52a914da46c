// Package codeexchanges records which authorization codes have been traded
// for credentials. The code is the key, so an exchange happens at most once.
package codeexchanges

import (
	"github.com/dmitrijs2005/omhauth/internal/server/models"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/credstore"
)

type Repository interface {
	credstore.Inserter[models.CodeExchange]
	credstore.Finder[models.CodeExchange]
}

func NewMemoryRepository() *credstore.Memory[models.CodeExchange] {
	return credstore.NewMemory(func(e *models.CodeExchange) string { return e.Code }, nil)
}
