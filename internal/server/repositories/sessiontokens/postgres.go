package sessiontokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/omhauth/internal/dbx"
	"github.com/dmitrijs2005/omhauth/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// StoreIfAbsent inserts t unless its token string is already stored.
func (r *PostgresRepository) StoreIfAbsent(ctx context.Context, t *models.SessionToken) error {
	query := `
		INSERT INTO session_tokens (token, username, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token) DO NOTHING
	`
	return dbx.InsertIfAbsent(ctx, r.db, query, t.Token, t.Username, t.CreatedAt, t.ExpiresAt)
}

// FindFresh returns the session token if it expires after now.
func (r *PostgresRepository) FindFresh(ctx context.Context, token string, now time.Time) (*models.SessionToken, error) {
	query := `
		SELECT token, username, created_at, expires_at
		FROM session_tokens
		WHERE token = $1 AND expires_at > $2
	`
	return dbx.QuerySingle(ctx, r.db, scanSessionToken, query, token, now)
}

func scanSessionToken(s dbx.Scanner) (*models.SessionToken, error) {
	t := &models.SessionToken{}
	if err := s.Scan(&t.Token, &t.Username, &t.CreatedAt, &t.ExpiresAt); err != nil {
		return nil, err
	}
	return t, nil
}
