// Package authtokens stores access/refresh credential pairs issued to third
// parties. The access token is the key; the refresh token is unique too.
package authtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/omhauth/internal/server/models"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/credstore"
)

// Repository stores authorization tokens. FindFresh looks up by access
// token and skips expired credentials; FindByRefreshToken ignores expiry.
type Repository interface {
	credstore.Inserter[models.AuthorizationToken]
	credstore.FreshFinder[models.AuthorizationToken]
	FindByRefreshToken(ctx context.Context, refreshToken string) (*models.AuthorizationToken, error)
}

// MemoryRepository is an in-process Repository.
type MemoryRepository struct {
	*credstore.Memory[models.AuthorizationToken]
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{credstore.NewMemory(
		accessToken,
		func(t *models.AuthorizationToken) time.Time { return t.ExpiresAt },
		refreshToken,
	)}
}

func (r *MemoryRepository) FindByRefreshToken(ctx context.Context, token string) (*models.AuthorizationToken, error) {
	return r.FindBy(ctx, refreshToken, token)
}

func accessToken(t *models.AuthorizationToken) string  { return t.AccessToken }
func refreshToken(t *models.AuthorizationToken) string { return t.RefreshToken }
