package codeexchanges

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

func (r *PostgresRepository) StoreIfAbsent(ctx context.Context, e *models.CodeExchange) error {
	query := `
		INSERT INTO code_exchanges (code, access_token, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO NOTHING
	`
	return dbx.InsertIfAbsent(ctx, r.db, query, e.Code, e.AccessToken, e.CreatedAt)
}

func (r *PostgresRepository) Find(ctx context.Context, code string) (*models.CodeExchange, error) {
	query := `
		SELECT code, access_token, created_at
		FROM code_exchanges
		WHERE code = $1
	`
	return dbx.QuerySingle(ctx, r.db, func(s dbx.Scanner) (*models.CodeExchange, error) {
		e := &models.CodeExchange{}
		if err := s.Scan(&e.Code, &e.AccessToken, &e.CreatedAt); err != nil {
			return nil, err
		}
		return e, nil
	}, query, code)
}
