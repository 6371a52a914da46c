package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/omhauth/internal/common"
	"github.com/dmitrijs2005/omhauth/internal/dbx"
	"github.com/dmitrijs2005/omhauth/internal/logging"
	"github.com/dmitrijs2005/omhauth/internal/server/audit"
	"github.com/dmitrijs2005/omhauth/internal/server/config"
	"github.com/dmitrijs2005/omhauth/internal/server/models"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/repomanager"
)

const (
	GrantTypeAuthorizationCode = "authorization_code"
	GrantTypeRefreshToken      = "refresh_token"
)

// TokenRequest is a token endpoint call.
type TokenRequest struct {
	GrantType    string
	ClientID     string
	ClientSecret string
	Code         string
	RefreshToken string
}

// TokenService trades verified codes and refresh tokens for access
// credentials.
type TokenService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	clients       ClientAuthenticator
	codes         *CodeService
	verifications *VerificationService
	audit         audit.Sink
	log           logging.Logger

	accessValidity  time.Duration
	refreshValidity time.Duration
	attempts        int
	now             func() time.Time
	newToken        func() (string, error)
}

func NewTokenService(db *sql.DB, m repomanager.RepositoryManager, clients ClientAuthenticator,
	codes *CodeService, verifications *VerificationService, sink audit.Sink, cfg *config.Config, log logging.Logger) *TokenService {
	if sink == nil {
		sink = audit.Nop{}
	}
	return &TokenService{
		db:              db,
		repomanager:     m,
		clients:         clients,
		codes:           codes,
		verifications:   verifications,
		audit:           sink,
		log:             log.With("module", "tokens"),
		accessValidity:  cfg.AccessTokenValidityDuration,
		refreshValidity: cfg.RefreshTokenValidityDuration,
		attempts:        cfg.TokenGenerationAttempts,
		now:             time.Now,
		newToken:        newRandomToken,
	}
}

// Exchange authenticates the client and dispatches on the grant type.
func (s *TokenService) Exchange(ctx context.Context, req TokenRequest) (*models.AuthorizationToken, error) {
	tp, err := s.clients.Authenticate(ctx, req.ClientID, req.ClientSecret)
	if err != nil {
		return nil, err
	}

	switch req.GrantType {
	case GrantTypeAuthorizationCode:
		if req.Code == "" {
			return nil, reject(ReasonInvalidRequest, "code is required")
		}
		return s.IssueFromCode(ctx, req.Code, tp)
	case GrantTypeRefreshToken:
		if req.RefreshToken == "" {
			return nil, reject(ReasonInvalidRequest, "refresh_token is required")
		}
		return s.IssueFromRefresh(ctx, req.RefreshToken, tp)
	default:
		return nil, reject(ReasonUnsupportedGrantType, "grant type %q", req.GrantType)
	}
}

// IssueFromCode exchanges a granted code for a credential. A code is
// exchanged at most once.
func (s *TokenService) IssueFromCode(ctx context.Context, code string, tp *models.ThirdParty) (*models.AuthorizationToken, error) {
	c, err := s.codes.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	// Client first, so a foreign client cannot probe expiry.
	if c.ThirdPartyID != tp.ID {
		s.log.Warn(ctx, "code presented by another client", "client_id", tp.ID, "code_client_id", c.ThirdPartyID)
		return nil, reject(ReasonClientMismatch, "code was issued to another client")
	}
	if c.Expired(s.now()) {
		return nil, reject(ReasonCodeExpired, "authorization code expired")
	}

	v, err := s.verifications.Lookup(ctx, c.Code)
	if err != nil {
		return nil, err
	}
	if !v.Granted {
		return nil, reject(ReasonAccessDenied, "resource owner denied access")
	}

	used, err := spent(ctx, s.repomanager.CodeExchanges(s.db).Find, c.Code)
	if err != nil {
		return nil, storeError("checking code exchange", err)
	}
	if used {
		s.publish(ctx, audit.KindCodeReplay, tp.ID, "", v.Username)
		return nil, reject(ReasonCodeAlreadyExchanged, "authorization code already exchanged")
	}

	var token *models.AuthorizationToken
	err = withTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		token, err = s.mint(ctx, tx, v.Username, tp.ID, c.Scopes, c.Code)
		if err != nil {
			return err
		}

		err = s.repomanager.CodeExchanges(tx).StoreIfAbsent(ctx, &models.CodeExchange{
			Code:        c.Code,
			AccessToken: token.AccessToken,
			CreatedAt:   token.CreatedAt,
		})
		if errors.Is(err, common.ErrDuplicateKey) {
			return reject(ReasonCodeAlreadyExchanged, "authorization code already exchanged")
		}
		return err
	})
	if err != nil {
		if errors.Is(err, ErrCodeAlreadyExchanged) {
			s.publish(ctx, audit.KindCodeReplay, tp.ID, "", v.Username)
		}
		return nil, storeError("exchanging authorization code", err)
	}

	s.log.Info(ctx, "credential issued from code", "client_id", tp.ID, "username", v.Username)
	return token, nil
}

// IssueFromRefresh rotates a credential. The old refresh token is spent
// and the old access token stops resolving.
func (s *TokenService) IssueFromRefresh(ctx context.Context, refreshToken string, tp *models.ThirdParty) (*models.AuthorizationToken, error) {
	old, err := s.repomanager.AuthTokens(s.db).FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrUnknownRefreshToken
		}
		return nil, storeError("looking up refresh token", err)
	}

	if old.ThirdPartyID != tp.ID {
		s.log.Warn(ctx, "refresh token presented by another client",
			"client_id", tp.ID, "token_client_id", old.ThirdPartyID, "username", old.Username)
		s.publish(ctx, audit.KindRefreshClientMismatch, tp.ID, old.ThirdPartyID, old.Username)
		return nil, reject(ReasonClientMismatch, "refresh token was issued to another client")
	}

	if s.refreshValidity > 0 && !s.now().Before(old.CreatedAt.Add(s.refreshValidity)) {
		return nil, reject(ReasonRefreshTokenExpired, "refresh token expired")
	}

	used, err := spent(ctx, s.repomanager.TokenRotations(s.db).Find, old.RefreshToken)
	if err != nil {
		return nil, storeError("checking token rotation", err)
	}
	if used {
		s.publish(ctx, audit.KindRefreshReplay, tp.ID, "", old.Username)
		return nil, reject(ReasonRefreshTokenRevoked, "refresh token already used")
	}

	var token *models.AuthorizationToken
	err = withTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		token, err = s.mint(ctx, tx, old.Username, old.ThirdPartyID, old.Scopes, old.Code)
		if err != nil {
			return err
		}

		err = s.repomanager.TokenRotations(tx).StoreIfAbsent(ctx, &models.TokenRotation{
			RefreshToken: old.RefreshToken,
			AccessToken:  token.AccessToken,
			CreatedAt:    token.CreatedAt,
		})
		if errors.Is(err, common.ErrDuplicateKey) {
			return reject(ReasonRefreshTokenRevoked, "refresh token already used")
		}
		return err
	})
	if err != nil {
		if errors.Is(err, ErrRefreshTokenRevoked) {
			s.publish(ctx, audit.KindRefreshReplay, tp.ID, "", old.Username)
		}
		return nil, storeError("rotating refresh token", err)
	}

	s.log.Info(ctx, "credential refreshed", "client_id", tp.ID, "username", old.Username)
	return token, nil
}

// Resolve returns the live credential for an access token. Credentials
// superseded by a refresh are not returned.
func (s *TokenService) Resolve(ctx context.Context, accessToken string) (*models.AuthorizationToken, bool, error) {
	if accessToken == "" {
		return nil, false, nil
	}

	t, err := s.repomanager.AuthTokens(s.db).FindFresh(ctx, accessToken, s.now())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, false, nil
		}
		return nil, false, storeError("resolving access token", err)
	}

	superseded, err := spent(ctx, s.repomanager.TokenRotations(s.db).Find, t.RefreshToken)
	if err != nil {
		return nil, false, storeError("checking rotation", err)
	}
	if superseded {
		return nil, false, nil
	}
	return t, true, nil
}

// mint stores a new credential, retrying on token collisions.
func (s *TokenService) mint(ctx context.Context, tx dbx.DBTX, username, thirdPartyID string, scopes []string, code string) (*models.AuthorizationToken, error) {
	repo := s.repomanager.AuthTokens(tx)

	var token *models.AuthorizationToken
	err := storeWithRetry(ctx, s.attempts, func(ctx context.Context) error {
		access, err := s.newToken()
		if err != nil {
			return err
		}
		refresh, err := s.newToken()
		if err != nil {
			return err
		}
		now := s.now()
		token = &models.AuthorizationToken{
			AccessToken:  access,
			RefreshToken: refresh,
			Username:     username,
			ThirdPartyID: thirdPartyID,
			Scopes:       scopes,
			Code:         code,
			CreatedAt:    now,
			ExpiresAt:    now.Add(s.accessValidity),
		}
		return repo.StoreIfAbsent(ctx, token)
	})
	return token, err
}

func (s *TokenService) publish(ctx context.Context, kind audit.Kind, clientID, expected, username string) {
	e := audit.NewEvent(kind, s.now())
	e.ThirdPartyID = clientID
	e.Expected = expected
	e.Username = username
	if err := s.audit.Publish(ctx, e); err != nil {
		s.log.Error(ctx, "error publishing security event", "kind", string(kind), "error", err)
	}
}

// spent reports whether a consumption marker exists for key. It only saves
// work for plain replays; the marker insert decides races.
func spent[T any](ctx context.Context, find func(context.Context, string) (*T, error), key string) (bool, error) {
	_, err := find(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, common.ErrorNotFound):
		return false, nil
	default:
		return false, err
	}
}
