package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/omhauth/internal/common"
	"github.com/dmitrijs2005/omhauth/internal/logging"
	"github.com/dmitrijs2005/omhauth/internal/server/models"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ClientAuthenticator resolves and authenticates third parties.
type ClientAuthenticator interface {
	Get(ctx context.Context, id string) (*models.ThirdParty, error)
	Authenticate(ctx context.Context, id, secret string) (*models.ThirdParty, error)
}

// ClientService manages registered third parties.
type ClientService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	now         func() time.Time
}

func NewClientService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *ClientService {
	return &ClientService{
		db:          db,
		repomanager: m,
		log:         log.With("module", "clients"),
		now:         time.Now,
	}
}

// Get returns the third party registered under id.
func (s *ClientService) Get(ctx context.Context, id string) (*models.ThirdParty, error) {
	if id == "" {
		return nil, reject(ReasonUnknownClient, "client_id is required")
	}
	tp, err := s.repomanager.ThirdParties(s.db).Find(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, reject(ReasonUnknownClient, "client %q", id)
		}
		return nil, storeError("looking up client", err)
	}
	return tp, nil
}

// Authenticate checks the client secret in constant time.
func (s *ClientService) Authenticate(ctx context.Context, id, secret string) (*models.ThirdParty, error) {
	tp, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if secret == "" {
		return nil, ErrMissingClientSecret
	}
	if subtle.ConstantTimeCompare([]byte(tp.Secret), []byte(secret)) != 1 {
		s.log.Warn(ctx, "client secret mismatch", "client_id", id)
		return nil, ErrInvalidClientSecret
	}
	return tp, nil
}

// Register creates a third party with a generated ID and secret.
func (s *ClientService) Register(ctx context.Context, name, redirectURI, description string) (*models.ThirdParty, error) {
	name = strings.TrimSpace(name)
	if name == "" || redirectURI == "" {
		return nil, reject(ReasonInvalidRequest, "name and redirect URI are required")
	}
	if u, err := url.Parse(redirectURI); err != nil || !u.IsAbs() || u.Host == "" {
		return nil, reject(ReasonInvalidRequest, "redirect URI must be an absolute URL")
	}

	secret, err := newRandomToken()
	if err != nil {
		return nil, err
	}

	tp := &models.ThirdParty{
		ID:          uuid.NewString(),
		Secret:      secret,
		RedirectURI: redirectURI,
		Name:        name,
		Description: description,
		CreatedAt:   s.now(),
	}
	if err := s.repomanager.ThirdParties(s.db).StoreIfAbsent(ctx, tp); err != nil {
		return nil, storeError("registering client", err)
	}

	s.log.Info(ctx, "client registered", "client_id", tp.ID, "name", name)
	return tp, nil
}
