package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/omhauth/internal/dbx"
	"github.com/dmitrijs2005/omhauth/internal/server/models"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/authcodes"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/authtokens"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/codeexchanges"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/credstore"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/schemas"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/sessiontokens"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/thirdparties"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/tokenrotations"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/users"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/verifications"
)

// MemoryRepositoryManager keeps one in-process store per kind and hands the
// same instance out for every DBTX. It backs the memory:// database mode
// and service tests.
type MemoryRepositoryManager struct {
	users          *users.MemoryRepository
	thirdParties   *credstore.Memory[models.ThirdParty]
	schemas        *schemas.MemoryRepository
	sessionTokens  *credstore.Memory[models.SessionToken]
	authCodes      *credstore.Memory[models.AuthorizationCode]
	verifications  *credstore.Memory[models.Verification]
	authTokens     *authtokens.MemoryRepository
	codeExchanges  *credstore.Memory[models.CodeExchange]
	tokenRotations *credstore.Memory[models.TokenRotation]
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:          users.NewMemoryRepository(),
		thirdParties:   thirdparties.NewMemoryRepository(),
		schemas:        schemas.NewMemoryRepository(),
		sessionTokens:  sessiontokens.NewMemoryRepository(),
		authCodes:      authcodes.NewMemoryRepository(),
		verifications:  verifications.NewMemoryRepository(),
		authTokens:     authtokens.NewMemoryRepository(),
		codeExchanges:  codeexchanges.NewMemoryRepository(),
		tokenRotations: tokenrotations.NewMemoryRepository(),
	}
}

// RunMigrations is a no-op.
func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }

func (m *MemoryRepositoryManager) ThirdParties(dbx.DBTX) thirdparties.Repository {
	return m.thirdParties
}

func (m *MemoryRepositoryManager) Schemas(dbx.DBTX) schemas.Repository { return m.schemas }

func (m *MemoryRepositoryManager) SessionTokens(dbx.DBTX) sessiontokens.Repository {
	return m.sessionTokens
}

func (m *MemoryRepositoryManager) AuthCodes(dbx.DBTX) authcodes.Repository { return m.authCodes }

func (m *MemoryRepositoryManager) Verifications(dbx.DBTX) verifications.Repository {
	return m.verifications
}

func (m *MemoryRepositoryManager) AuthTokens(dbx.DBTX) authtokens.Repository { return m.authTokens }

func (m *MemoryRepositoryManager) CodeExchanges(dbx.DBTX) codeexchanges.Repository {
	return m.codeExchanges
}

func (m *MemoryRepositoryManager) TokenRotations(dbx.DBTX) tokenrotations.Repository {
	return m.tokenRotations
}
