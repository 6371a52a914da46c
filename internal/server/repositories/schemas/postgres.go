package schemas

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/omhauth/internal/dbx"
	"github.com/dmitrijs2005/omhauth/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.Schema) error {
	query := `
		INSERT INTO schemas (id, version)
		VALUES ($1, $2)
		ON CONFLICT (id, version) DO NOTHING
	`
	return dbx.InsertIfAbsent(ctx, r.db, query, s.ID, s.Version)
}

func (r *PostgresRepository) Versions(ctx context.Context, id string) ([]int64, error) {
	query := `
		SELECT version
		FROM schemas
		WHERE id = $1
		ORDER BY version DESC
	`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	versions := make([]int64, 0)
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return versions, nil
}
