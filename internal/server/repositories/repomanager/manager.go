// Package repomanager vends repository implementations bound to a
// database handle or transaction, and runs schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/omhauth/internal/dbx"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/authcodes"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/authtokens"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/codeexchanges"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/schemas"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/sessiontokens"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/thirdparties"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/tokenrotations"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/users"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/verifications"
)

// RepositoryManager binds repositories to a DBTX so that services can run
// several of them inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	ThirdParties(db dbx.DBTX) thirdparties.Repository
	Schemas(db dbx.DBTX) schemas.Repository
	SessionTokens(db dbx.DBTX) sessiontokens.Repository
	AuthCodes(db dbx.DBTX) authcodes.Repository
	Verifications(db dbx.DBTX) verifications.Repository
	AuthTokens(db dbx.DBTX) authtokens.Repository
	CodeExchanges(db dbx.DBTX) codeexchanges.Repository
	TokenRotations(db dbx.DBTX) tokenrotations.Repository
}
