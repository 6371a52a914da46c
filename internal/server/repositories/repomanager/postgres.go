package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/omhauth/internal/dbx"
	"github.com/dmitrijs2005/omhauth/internal/server/migrations"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/authcodes"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/authtokens"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/codeexchanges"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/schemas"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/sessiontokens"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/thirdparties"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/tokenrotations"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/users"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/verifications"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) ThirdParties(db dbx.DBTX) thirdparties.Repository {
	return thirdparties.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Schemas(db dbx.DBTX) schemas.Repository {
	return schemas.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) SessionTokens(db dbx.DBTX) sessiontokens.Repository {
	return sessiontokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) AuthCodes(db dbx.DBTX) authcodes.Repository {
	return authcodes.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Verifications(db dbx.DBTX) verifications.Repository {
	return verifications.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) AuthTokens(db dbx.DBTX) authtokens.Repository {
	return authtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) CodeExchanges(db dbx.DBTX) codeexchanges.Repository {
	return codeexchanges.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) TokenRotations(db dbx.DBTX) tokenrotations.Repository {
	return tokenrotations.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded goose migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}
