package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/omhauth/internal/server/models"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/credstore"
	"github.com/google/uuid"
)

// MemoryRepository keeps users in process memory, keyed by username.
type MemoryRepository struct {
	store *credstore.Memory[models.User]
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		store: credstore.NewMemory(func(u *models.User) string { return u.Username }, nil),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	u := *user
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	if err := r.store.StoreIfAbsent(ctx, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *MemoryRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.store.Find(ctx, username)
}
