package thirdparties

import (
	"context"

	"github.com/dmitrijs2005/omhauth/internal/dbx"
	"github.com/dmitrijs2005/omhauth/internal/server/models"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/credstore"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// StoreIfAbsent registers tp unless its ID is taken.
func (r *PostgresRepository) StoreIfAbsent(ctx context.Context, tp *models.ThirdParty) error {
	query := `
		INSERT INTO third_parties (id, secret, redirect_uri, name, description)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	return dbx.InsertIfAbsent(ctx, r.db, query, tp.ID, tp.Secret, tp.RedirectURI, tp.Name, tp.Description)
}

// Find returns the third party with the given ID or common.ErrorNotFound.
func (r *PostgresRepository) Find(ctx context.Context, id string) (*models.ThirdParty, error) {
	query := `
		SELECT id, secret, redirect_uri, name, description, created_at
		FROM third_parties
		WHERE id = $1
	`
	return dbx.QuerySingle(ctx, r.db, scanThirdParty, query, id)
}

func scanThirdParty(s dbx.Scanner) (*models.ThirdParty, error) {
	tp := &models.ThirdParty{}
	if err := s.Scan(&tp.ID, &tp.Secret, &tp.RedirectURI, &tp.Name, &tp.Description, &tp.CreatedAt); err != nil {
		return nil, err
	}
	return tp, nil
}

// NewMemoryRepository returns an in-process Repository.
func NewMemoryRepository() *credstore.Memory[models.ThirdParty] {
	return credstore.NewMemory(func(tp *models.ThirdParty) string { return tp.ID }, nil)
}
