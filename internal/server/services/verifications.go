package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/omhauth/internal/common"
	"github.com/dmitrijs2005/omhauth/internal/logging"
	"github.com/dmitrijs2005/omhauth/internal/server/models"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/repomanager"
)

// VerificationService records the resource owner's grant or denial of a
// code. A code gets at most one decision, from one user.
type VerificationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	identity    Authenticator
	codes       *CodeService
	log         logging.Logger
	now         func() time.Time
}

func NewVerificationService(db *sql.DB, m repomanager.RepositoryManager, identity Authenticator, codes *CodeService, log logging.Logger) *VerificationService {
	return &VerificationService{
		db:          db,
		repomanager: m,
		identity:    identity,
		codes:       codes,
		log:         log.With("module", "verifications"),
		now:         time.Now,
	}
}

// RecordDecision stores username's decision for code. Repeating the same
// decision returns the stored verification unchanged.
func (s *VerificationService) RecordDecision(ctx context.Context, code *models.AuthorizationCode, username string, granted bool) (*models.Verification, error) {
	if code.Expired(s.now()) {
		return nil, reject(ReasonCodeExpired, "authorization code expired")
	}

	repo := s.repomanager.Verifications(s.db)

	existing, err := repo.Find(ctx, code.Code)
	switch {
	case err == nil:
		return s.compare(ctx, existing, username, granted)
	case !errors.Is(err, common.ErrorNotFound):
		return nil, storeError("looking up verification", err)
	}

	v := &models.Verification{Code: code.Code, Username: username, Granted: granted, CreatedAt: s.now()}
	err = repo.StoreIfAbsent(ctx, v)
	if err == nil {
		s.log.Info(ctx, "code verified", "client_id", code.ThirdPartyID, "username", username, "granted", granted)
		return v, nil
	}
	if !errors.Is(err, common.ErrDuplicateKey) {
		return nil, storeError("storing verification", err)
	}

	// Lost a concurrent insert; judge against the winner.
	winner, err := repo.Find(ctx, code.Code)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, reject(ReasonConflict, "verification vanished after duplicate insert")
		}
		return nil, storeError("re-reading verification", err)
	}
	return s.compare(ctx, winner, username, granted)
}

func (s *VerificationService) compare(ctx context.Context, v *models.Verification, username string, granted bool) (*models.Verification, error) {
	if v.Username != username {
		s.log.Warn(ctx, "verification by another user", "code_owner", v.Username, "username", username)
		return nil, reject(ReasonOwnerMismatch, "code was verified by another user")
	}
	if v.Granted != granted {
		return nil, reject(ReasonConflictingDecision, "code was already %s", decisionWord(v.Granted))
	}
	return v, nil
}

// Lookup returns the decision recorded for code, or ErrNotYetVerified.
func (s *VerificationService) Lookup(ctx context.Context, code string) (*models.Verification, error) {
	v, err := s.repomanager.Verifications(s.db).Find(ctx, code)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrNotYetVerified
		}
		return nil, storeError("looking up verification", err)
	}
	return v, nil
}

// Decide authenticates the user, resolves the code and records the
// decision. The resolved code is returned even when recording fails so
// callers can report the outcome to the third party.
func (s *VerificationService) Decide(ctx context.Context, code, username, password string, granted bool) (*models.AuthorizationCode, *models.Verification, error) {
	user, err := s.identity.Authenticate(ctx, username, password)
	if err != nil {
		return nil, nil, err
	}

	c, err := s.codes.Lookup(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	v, err := s.RecordDecision(ctx, c, user.Username, granted)
	return c, v, err
}

func decisionWord(granted bool) string {
	if granted {
		return "granted"
	}
	return "denied"
}
