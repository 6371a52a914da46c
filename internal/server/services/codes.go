package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/omhauth/internal/common"
	"github.com/dmitrijs2005/omhauth/internal/logging"
	"github.com/dmitrijs2005/omhauth/internal/server/config"
	"github.com/dmitrijs2005/omhauth/internal/server/models"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/repomanager"
)

// CodeService issues one-time authorization codes to third parties.
type CodeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	scopes      ScopeValidator
	log         logging.Logger

	validity time.Duration
	attempts int
	now      func() time.Time
	newCode  func() (string, error)
}

func NewCodeService(db *sql.DB, m repomanager.RepositoryManager, scopes ScopeValidator, cfg *config.Config, log logging.Logger) *CodeService {
	return &CodeService{
		db:          db,
		repomanager: m,
		scopes:      scopes,
		log:         log.With("module", "codes"),
		validity:    cfg.AuthorizationCodeValidityDuration,
		attempts:    cfg.TokenGenerationAttempts,
		now:         time.Now,
		newCode:     newRandomToken,
	}
}

// Issue validates scopes and stores a fresh code for tp. Nothing is stored
// when a scope is unknown.
func (s *CodeService) Issue(ctx context.Context, tp *models.ThirdParty, scopes []string, state string) (*models.AuthorizationCode, error) {
	if len(scopes) == 0 {
		return nil, reject(ReasonInvalidScope, "no scope requested")
	}
	for _, scope := range scopes {
		ok, err := s.scopes.ValidateScope(ctx, scope)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, reject(ReasonInvalidScope, "unknown scope %q", scope)
		}
	}

	repo := s.repomanager.AuthCodes(s.db)

	var code *models.AuthorizationCode
	err := storeWithRetry(ctx, s.attempts, func(ctx context.Context) error {
		value, err := s.newCode()
		if err != nil {
			return err
		}
		now := s.now()
		code = &models.AuthorizationCode{
			Code:         value,
			ThirdPartyID: tp.ID,
			Scopes:       scopes,
			State:        state,
			CreatedAt:    now,
			ExpiresAt:    now.Add(s.validity),
		}
		return repo.StoreIfAbsent(ctx, code)
	})
	if err != nil {
		return nil, storeError("storing authorization code", err)
	}

	s.log.Info(ctx, "authorization code issued", "client_id", tp.ID, "scope", models.ScopeString(scopes))
	return code, nil
}

// Lookup returns the code regardless of expiry, or ErrUnknownCode.
func (s *CodeService) Lookup(ctx context.Context, code string) (*models.AuthorizationCode, error) {
	if code == "" {
		return nil, reject(ReasonUnknownCode, "code is required")
	}
	c, err := s.repomanager.AuthCodes(s.db).Find(ctx, code)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrUnknownCode
		}
		return nil, storeError("looking up authorization code", err)
	}
	return c, nil
}
