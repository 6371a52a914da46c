package tokenrotations

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

func (r *PostgresRepository) StoreIfAbsent(ctx context.Context, rot *models.TokenRotation) error {
	query := `
		INSERT INTO token_rotations (refresh_token, access_token, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (refresh_token) DO NOTHING
	`
	return dbx.InsertIfAbsent(ctx, r.db, query, rot.RefreshToken, rot.AccessToken, rot.CreatedAt)
}

// Find reports the rotation of a refresh token, if any.
func (r *PostgresRepository) Find(ctx context.Context, refreshToken string) (*models.TokenRotation, error) {
	query := `
		SELECT refresh_token, access_token, created_at
		FROM token_rotations
		WHERE refresh_token = $1
	`
	return dbx.QuerySingle(ctx, r.db, func(s dbx.Scanner) (*models.TokenRotation, error) {
		rot := &models.TokenRotation{}
		if err := s.Scan(&rot.RefreshToken, &rot.AccessToken, &rot.CreatedAt); err != nil {
			return nil, err
		}
		return rot, nil
	}, query, refreshToken)
}
