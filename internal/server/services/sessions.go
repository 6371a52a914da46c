package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/omhauth/internal/common"
	"github.com/dmitrijs2005/omhauth/internal/logging"
	"github.com/dmitrijs2005/omhauth/internal/server/auth"
	"github.com/dmitrijs2005/omhauth/internal/server/config"
	"github.com/dmitrijs2005/omhauth/internal/server/models"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/repomanager"
)

// SessionService issues and resolves first-party session tokens.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	identity    Authenticator
	log         logging.Logger

	secret   []byte
	validity time.Duration
	attempts int
	now      func() time.Time
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, identity Authenticator, cfg *config.Config, log logging.Logger) *SessionService {
	return &SessionService{
		db:          db,
		repomanager: m,
		identity:    identity,
		log:         log.With("module", "sessions"),
		secret:      []byte(cfg.SecretKey),
		validity:    cfg.SessionTokenValidityDuration,
		attempts:    cfg.TokenGenerationAttempts,
		now:         time.Now,
	}
}

// Issue mints and stores a session token for username.
func (s *SessionService) Issue(ctx context.Context, username string) (*models.SessionToken, error) {
	repo := s.repomanager.SessionTokens(s.db)

	var token *models.SessionToken
	err := storeWithRetry(ctx, s.attempts, func(ctx context.Context) error {
		now := s.now()
		expires := now.Add(s.validity)

		signed, err := auth.GenerateSessionToken(username, s.secret, now, expires)
		if err != nil {
			return err
		}

		token = &models.SessionToken{Token: signed, Username: username, CreatedAt: now, ExpiresAt: expires}
		return repo.StoreIfAbsent(ctx, token)
	})
	if err != nil {
		return nil, storeError("storing session token", err)
	}

	s.log.Debug(ctx, "session issued", "username", username)
	return token, nil
}

// Resolve returns the owner of a live session token. A token that fails
// signature verification is reported as absent without a store read.
func (s *SessionService) Resolve(ctx context.Context, token string) (string, bool, error) {
	now := s.now()
	if _, err := auth.ParseSessionToken(token, s.secret, now); err != nil {
		return "", false, nil
	}

	st, err := s.repomanager.SessionTokens(s.db).FindFresh(ctx, token, now)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", false, nil
		}
		return "", false, storeError("resolving session token", err)
	}
	return st.Username, true, nil
}

// Login authenticates the user and issues a session token.
func (s *SessionService) Login(ctx context.Context, username, password string) (*models.SessionToken, error) {
	user, err := s.identity.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return s.Issue(ctx, user.Username)
}
