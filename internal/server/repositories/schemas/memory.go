package schemas

import (
	"context"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/omhauth/internal/server/models"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/credstore"
)

type MemoryRepository struct {
	store *credstore.Memory[models.Schema]
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		store: credstore.NewMemory(func(s *models.Schema) string { return fmt.Sprintf("%s@%d", s.ID, s.Version) }, nil),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, s *models.Schema) error {
	return r.store.StoreIfAbsent(ctx, s)
}

func (r *MemoryRepository) Versions(ctx context.Context, id string) ([]int64, error) {
	found, err := r.store.Filter(ctx, func(s *models.Schema) bool { return s.ID == id })
	if err != nil {
		return nil, err
	}
	versions := make([]int64, 0, len(found))
	for _, s := range found {
		versions = append(versions, s.Version)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] > versions[j] })
	return versions, nil
}
