package authtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/omhauth/internal/dbx"
	"github.com/dmitrijs2005/omhauth/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `access_token, refresh_token, username, third_party_id, scopes, code, created_at, expires_at`

// StoreIfAbsent inserts t. A clash on either the access or the refresh
// token is reported as common.ErrDuplicateKey.
func (r *PostgresRepository) StoreIfAbsent(ctx context.Context, t *models.AuthorizationToken) error {
	query := `
		INSERT INTO authorization_tokens (` + selectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT DO NOTHING
	`
	return dbx.InsertIfAbsent(ctx, r.db, query,
		t.AccessToken, t.RefreshToken, t.Username, t.ThirdPartyID,
		models.ScopeString(t.Scopes), t.Code, t.CreatedAt, t.ExpiresAt)
}

// FindFresh returns the credential for an access token that has not expired at now.
func (r *PostgresRepository) FindFresh(ctx context.Context, token string, now time.Time) (*models.AuthorizationToken, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM authorization_tokens
		WHERE access_token = $1 AND expires_at > $2
	`
	return dbx.QuerySingle(ctx, r.db, scanToken, query, token, now)
}

// FindByRefreshToken returns the credential holding the refresh token.
func (r *PostgresRepository) FindByRefreshToken(ctx context.Context, token string) (*models.AuthorizationToken, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM authorization_tokens
		WHERE refresh_token = $1
	`
	return dbx.QuerySingle(ctx, r.db, scanToken, query, token)
}

func scanToken(s dbx.Scanner) (*models.AuthorizationToken, error) {
	var scopes string
	t := &models.AuthorizationToken{}
	if err := s.Scan(&t.AccessToken, &t.RefreshToken, &t.Username, &t.ThirdPartyID,
		&scopes, &t.Code, &t.CreatedAt, &t.ExpiresAt); err != nil {
		return nil, err
	}
	t.Scopes = models.ParseScopes(scopes)
	return t, nil
}
