// Package schemas stores the known data schema versions that OAuth scopes
// are validated against.
package schemas

import (
	"context"

	"github.com/dmitrijs2005/omhauth/internal/server/models"
)

type Repository interface {
	// Create registers a schema version. An existing (id, version) pair
	// yields common.ErrDuplicateKey.
	Create(ctx context.Context, s *models.Schema) error

	// Versions lists the registered versions of a schema ID, newest first.
	Versions(ctx context.Context, id string) ([]int64, error)
}
