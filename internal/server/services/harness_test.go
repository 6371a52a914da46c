package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/omhauth/internal/dbx"
	"github.com/dmitrijs2005/omhauth/internal/logging"
	"github.com/dmitrijs2005/omhauth/internal/server/audit"
	"github.com/dmitrijs2005/omhauth/internal/server/config"
	"github.com/dmitrijs2005/omhauth/internal/server/models"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/authcodes"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/authtokens"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/sessiontokens"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/verifications"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

var epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordingSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingSink) Publish(_ context.Context, e audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingSink) kinds() []audit.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []audit.Kind
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

type harness struct {
	cfg   *config.Config
	db    *sql.DB
	rm    *repomanager.MemoryRepositoryManager
	clock *clock
	sink  *recordingSink

	identity      *IdentityService
	clients       *ClientService
	schemas       *SchemaRegistry
	sessions      *SessionService
	codes         *CodeService
	verifications *VerificationService
	tokens        *TokenService

	client      *models.ThirdParty
	otherClient *models.ThirdParty
}

// sqliteDB returns an empty in-memory database so that service
// transactions really begin and commit.
func sqliteDB(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := sql.Open("sqlite", fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// newHarness wires every service over the memory repositories. withDB
// adds a sqlite handle for transactions; without it services run in
// memory mode.
func newHarness(t *testing.T, withDB bool) *harness {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()

	h := &harness{
		cfg:   cfg,
		rm:    repomanager.NewMemoryRepositoryManager(),
		clock: &clock{t: epoch},
		sink:  &recordingSink{},
	}
	if withDB {
		h.db = sqliteDB(t)
	}
	h.build(h.rm)
	h.seed(t)
	return h
}

// build (re)wires services over m, keeping the harness clock.
func (h *harness) build(m repomanager.RepositoryManager) {
	log := logging.Nop()

	h.identity = NewIdentityService(h.db, m, log)
	h.identity.cost = bcrypt.MinCost
	h.identity.now = h.clock.Now

	h.clients = NewClientService(h.db, m, log)
	h.clients.now = h.clock.Now

	h.schemas = NewSchemaRegistry(h.db, m)

	h.sessions = NewSessionService(h.db, m, h.identity, h.cfg, log)
	h.sessions.now = h.clock.Now

	h.codes = NewCodeService(h.db, m, h.schemas, h.cfg, log)
	h.codes.now = h.clock.Now

	h.verifications = NewVerificationService(h.db, m, h.identity, h.codes, log)
	h.verifications.now = h.clock.Now

	h.tokens = NewTokenService(h.db, m, h.clients, h.codes, h.verifications, h.sink, h.cfg, log)
	h.tokens.now = h.clock.Now
}

func (h *harness) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	for _, u := range []string{"alice", "bob"} {
		_, err := h.identity.Register(ctx, u, u+"-password")
		require.NoError(t, err)
	}

	for _, id := range []string{"omh:read", "omh:write"} {
		require.NoError(t, h.schemas.Register(ctx, id, 1))
	}

	var err error
	h.client, err = h.clients.Register(ctx, "Acme", "https://acme.example/cb", "Acme app")
	require.NoError(t, err)
	h.otherClient, err = h.clients.Register(ctx, "Evil", "https://evil.example/cb", "")
	require.NoError(t, err)
}

// grantedCode issues a code to the harness client and records alice's
// grant.
func (h *harness) grantedCode(t *testing.T) *models.AuthorizationCode {
	t.Helper()
	ctx := context.Background()
	c, err := h.codes.Issue(ctx, h.client, []string{"omh:read"}, "st")
	require.NoError(t, err)
	_, err = h.verifications.RecordDecision(ctx, c, "alice", true)
	require.NoError(t, err)
	return c
}

// overrides replaces single repositories of a memory manager.
type overrides struct {
	*repomanager.MemoryRepositoryManager
	sessionTokens sessiontokens.Repository
	authCodes     authcodes.Repository
	verifications verifications.Repository
	authTokens    authtokens.Repository
}

func (o *overrides) SessionTokens(db dbx.DBTX) sessiontokens.Repository {
	if o.sessionTokens != nil {
		return o.sessionTokens
	}
	return o.MemoryRepositoryManager.SessionTokens(db)
}

func (o *overrides) AuthCodes(db dbx.DBTX) authcodes.Repository {
	if o.authCodes != nil {
		return o.authCodes
	}
	return o.MemoryRepositoryManager.AuthCodes(db)
}

func (o *overrides) Verifications(db dbx.DBTX) verifications.Repository {
	if o.verifications != nil {
		return o.verifications
	}
	return o.MemoryRepositoryManager.Verifications(db)
}

func (o *overrides) AuthTokens(db dbx.DBTX) authtokens.Repository {
	if o.authTokens != nil {
		return o.authTokens
	}
	return o.MemoryRepositoryManager.AuthTokens(db)
}

// fakeSessionTokens fails every call with err and counts calls.
type fakeSessionTokens struct {
	err    error
	stores int
	finds  int
}

func (f *fakeSessionTokens) StoreIfAbsent(context.Context, *models.SessionToken) error {
	f.stores++
	return f.err
}

func (f *fakeSessionTokens) FindFresh(context.Context, string, time.Time) (*models.SessionToken, error) {
	f.finds++
	return nil, f.err
}
