// Package users declares the repository contract for resource owners and
// its PostgreSQL and in-memory implementations.
package users

import (
	"context"

	"github.com/dmitrijs2005/omhauth/internal/server/models"
)

// Repository stores and looks up users by username.
type Repository interface {
	// Create inserts user, assigning an ID when it is empty. A taken
	// username yields common.ErrDuplicateKey.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetUserByUsername returns the user or common.ErrorNotFound.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}
