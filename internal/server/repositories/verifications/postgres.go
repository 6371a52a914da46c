package verifications

import (
	"context"

	"github.com/dmitrijs2005/omhauth/internal/dbx"
	"github.com/dmitrijs2005/omhauth/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// StoreIfAbsent records v unless a decision for the same code exists.
func (r *PostgresRepository) StoreIfAbsent(ctx context.Context, v *models.Verification) error {
	query := `
		INSERT INTO authorization_code_verifications (code, username, granted, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO NOTHING
	`
	return dbx.InsertIfAbsent(ctx, r.db, query, v.Code, v.Username, v.Granted, v.CreatedAt)
}

func (r *PostgresRepository) Find(ctx context.Context, code string) (*models.Verification, error) {
	query := `
		SELECT code, username, granted, created_at
		FROM authorization_code_verifications
		WHERE code = $1
	`
	return dbx.QuerySingle(ctx, r.db, func(s dbx.Scanner) (*models.Verification, error) {
		v := &models.Verification{}
		if err := s.Scan(&v.Code, &v.Username, &v.Granted, &v.CreatedAt); err != nil {
			return nil, err
		}
		return v, nil
	}, query, code)
}
