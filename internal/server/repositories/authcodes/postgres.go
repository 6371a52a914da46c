package authcodes

import (
	"context"
	"time"

	"github.com/dmitrijs2005/omhauth/internal/dbx"
	"github.com/dmitrijs2005/omhauth/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX. Scopes are kept
// as a single space-delimited column.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) StoreIfAbsent(ctx context.Context, c *models.AuthorizationCode) error {
	query := `
		INSERT INTO authorization_codes (code, third_party_id, scopes, state, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (code) DO NOTHING
	`
	return dbx.InsertIfAbsent(ctx, r.db, query,
		c.Code, c.ThirdPartyID, models.ScopeString(c.Scopes), c.State, c.CreatedAt, c.ExpiresAt)
}

func (r *PostgresRepository) Find(ctx context.Context, code string) (*models.AuthorizationCode, error) {
	query := `
		SELECT code, third_party_id, scopes, state, created_at, expires_at
		FROM authorization_codes
		WHERE code = $1
	`
	return dbx.QuerySingle(ctx, r.db, scanCode, query, code)
}

func (r *PostgresRepository) FindFresh(ctx context.Context, code string, now time.Time) (*models.AuthorizationCode, error) {
	query := `
		SELECT code, third_party_id, scopes, state, created_at, expires_at
		FROM authorization_codes
		WHERE code = $1 AND expires_at > $2
	`
	return dbx.QuerySingle(ctx, r.db, scanCode, query, code, now)
}

func scanCode(s dbx.Scanner) (*models.AuthorizationCode, error) {
	var scopes string
	c := &models.AuthorizationCode{}
	if err := s.Scan(&c.Code, &c.ThirdPartyID, &scopes, &c.State, &c.CreatedAt, &c.ExpiresAt); err != nil {
		return nil, err
	}
	c.Scopes = models.ParseScopes(scopes)
	return c, nil
}
