package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/omhauth/internal/common"
	"github.com/dmitrijs2005/omhauth/internal/logging"
	"github.com/dmitrijs2005/omhauth/internal/server/models"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// Authenticator checks a resource owner's password.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

// IdentityService verifies and registers resource owners. Passwords are
// stored as bcrypt hashes.
type IdentityService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	cost        int
	now         func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *IdentityService {
	return &IdentityService{
		db:          db,
		repomanager: m,
		log:         log.With("module", "identity"),
		cost:        bcrypt.DefaultCost,
		now:         time.Now,
	}
}

// Authenticate returns the user when password matches. Unknown users and
// wrong passwords both yield ErrInvalidCredentials after a bcrypt
// comparison, so the two cases take similar time.
func (s *IdentityService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, reject(ReasonInvalidRequest, "username is required")
	}

	user, err := s.repomanager.Users(s.db).GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, storeError("looking up user", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		s.log.Debug(ctx, "password mismatch", "username", username)
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Register creates a user with a bcrypt hash of password.
func (s *IdentityService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, reject(ReasonInvalidRequest, "username is required")
	}
	if password == "" {
		return nil, reject(ReasonInvalidRequest, "password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return nil, storeError("creating user", err)
	}

	s.log.Info(ctx, "user registered", "username", username)
	return user, nil
}

func (s *IdentityService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword(common.GenerateRandByteArray(16), s.cost)
	})
	return s.dummyHash
}
