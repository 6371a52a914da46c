// Package httpapi exposes the credential authorities over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/omhauth/internal/logging"
	"github.com/dmitrijs2005/omhauth/internal/server/metrics"
	"github.com/dmitrijs2005/omhauth/internal/server/models"
	"github.com/dmitrijs2005/omhauth/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type SessionAuthority interface {
	Login(ctx context.Context, username, password string) (*models.SessionToken, error)
	Resolve(ctx context.Context, token string) (string, bool, error)
}

type CodeAuthority interface {
	Issue(ctx context.Context, tp *models.ThirdParty, scopes []string, state string) (*models.AuthorizationCode, error)
}

type VerificationAuthority interface {
	Decide(ctx context.Context, code, username, password string, granted bool) (*models.AuthorizationCode, *models.Verification, error)
}

type TokenAuthority interface {
	Exchange(ctx context.Context, req services.TokenRequest) (*models.AuthorizationToken, error)
	Resolve(ctx context.Context, accessToken string) (*models.AuthorizationToken, bool, error)
}

type ClientDirectory interface {
	Get(ctx context.Context, id string) (*models.ThirdParty, error)
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps holds everything the router needs. Metrics, Gatherer, Tracer,
// Limiter and Health are optional.
type Deps struct {
	Sessions      SessionAuthority
	Codes         CodeAuthority
	Verifications VerificationAuthority
	Tokens        TokenAuthority
	Clients       ClientDirectory

	Metrics  metrics.Recorder
	Gatherer prometheus.Gatherer
	Tracer   trace.TracerProvider
	Limiter  *RateLimiter
	Health   Pinger

	AuthorizePage string
	Logger        logging.Logger
	Now           func() time.Time
}

// API holds the handlers.
type API struct {
	sessions      SessionAuthority
	codes         CodeAuthority
	verifications VerificationAuthority
	tokens        TokenAuthority
	clients       ClientDirectory
	metrics       metrics.Recorder
	health        Pinger
	authorizePage string
	log           logging.Logger
	now           func() time.Time
}

type nopRecorder struct{}

func (nopRecorder) RecordIssued(string)                           {}
func (nopRecorder) RecordRejection(string)                        {}
func (nopRecorder) RecordHTTPResponse(string, int, time.Duration) {}

// NewRouter builds the chi router serving the API.
func NewRouter(d Deps) http.Handler {
	a := &API{
		sessions:      d.Sessions,
		codes:         d.Codes,
		verifications: d.Verifications,
		tokens:        d.Tokens,
		clients:       d.Clients,
		metrics:       d.Metrics,
		health:        d.Health,
		authorizePage: d.AuthorizePage,
		log:           d.Logger,
		now:           d.Now,
	}
	if a.metrics == nil {
		a.metrics = nopRecorder{}
	}
	if a.log == nil {
		a.log = logging.Nop()
	}
	a.log = a.log.With("module", "httpapi")
	if a.now == nil {
		a.now = time.Now
	}
	tp := d.Tracer
	if tp == nil {
		tp = noop.NewTracerProvider()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(a.log))
	r.Use(middleware.Recoverer)
	r.Use(traced(tp))
	r.Use(observe(a.metrics))

	r.Get("/healthz", a.handleHealth)
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(d.Gatherer))
	}

	r.Route("/v1/auth", func(r chi.Router) {
		if d.Limiter != nil {
			r.Use(d.Limiter.Middleware)
		}
		r.Post("/", a.handleLogin)
		r.Get("/session", a.handleSession)

		r.Route("/oauth", func(r chi.Router) {
			r.Get("/authorize", a.handleAuthorize)
			r.Post("/authorization", a.handleAuthorization)
			r.Post("/token", a.handleToken)
			r.Get("/token", a.handleTokenInfo)
		})
	})

	return r
}
