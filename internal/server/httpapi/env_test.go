package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dmitrijs2005/omhauth/internal/logging"
	"github.com/dmitrijs2005/omhauth/internal/server/audit"
	"github.com/dmitrijs2005/omhauth/internal/server/config"
	"github.com/dmitrijs2005/omhauth/internal/server/models"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/omhauth/internal/server/services"
	"github.com/stretchr/testify/require"
)

// env is a router over real services backed by memory repositories.
type env struct {
	cfg    *config.Config
	router http.Handler
	client *models.ThirdParty
	other  *models.ThirdParty
}

func newEnv(t *testing.T, tweak func(*config.Config), extra func(*Deps)) *env {
	t.Helper()
	ctx := context.Background()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	if tweak != nil {
		tweak(cfg)
	}

	log := logging.Nop()
	rm := repomanager.NewMemoryRepositoryManager()

	identity := services.NewIdentityService(nil, rm, log)
	clients := services.NewClientService(nil, rm, log)
	schemas := services.NewSchemaRegistry(nil, rm)
	sessions := services.NewSessionService(nil, rm, identity, cfg, log)
	codes := services.NewCodeService(nil, rm, schemas, cfg, log)
	verifications := services.NewVerificationService(nil, rm, identity, codes, log)
	tokens := services.NewTokenService(nil, rm, clients, codes, verifications, audit.Nop{}, cfg, log)

	for _, u := range []string{"alice", "bob"} {
		_, err := identity.Register(ctx, u, u+"-password")
		require.NoError(t, err)
	}
	require.NoError(t, schemas.Register(ctx, "omh:read", 1))

	e := &env{cfg: cfg}
	var err error
	e.client, err = clients.Register(ctx, "Acme", "https://acme.example/cb", "Acme app")
	require.NoError(t, err)
	e.other, err = clients.Register(ctx, "Other", "https://other.example/cb", "")
	require.NoError(t, err)

	d := Deps{
		Sessions:      sessions,
		Codes:         codes,
		Verifications: verifications,
		Tokens:        tokens,
		Clients:       clients,
		AuthorizePage: cfg.AuthorizePage,
		Logger:        log,
	}
	if extra != nil {
		extra(&d)
	}
	e.router = NewRouter(d)
	return e
}

func (e *env) do(t *testing.T, r *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w
}

func (e *env) get(t *testing.T, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		r.Header[k] = v
	}
	return e.do(t, r)
}

func (e *env) postForm(t *testing.T, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(t, r)
}

func location(t *testing.T, w *httptest.ResponseRecorder) *url.URL {
	t.Helper()
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	u, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	return u
}

// authorize runs the authorize step and returns the issued code.
func (e *env) authorize(t *testing.T, clientID, scope, state string) string {
	t.Helper()
	q := url.Values{"response_type": {"code"}, "client_id": {clientID}, "scope": {scope}, "state": {state}}
	u := location(t, e.get(t, "/v1/auth/oauth/authorize?"+q.Encode(), nil))
	code := u.Query().Get("code")
	require.NotEmpty(t, code)
	return code
}

func (e *env) decide(t *testing.T, code, username string, granted bool) *httptest.ResponseRecorder {
	t.Helper()
	g := "false"
	if granted {
		g = "true"
	}
	return e.postForm(t, "/v1/auth/oauth/authorization", url.Values{
		"code": {code}, "username": {username}, "password": {username + "-password"}, "granted": {g},
	})
}
