// Package server initializes and runs the credential authority: storage,
// services, the HTTP API and the gRPC health endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/omhauth/internal/logging"
	"github.com/dmitrijs2005/omhauth/internal/server/audit"
	"github.com/dmitrijs2005/omhauth/internal/server/config"
	"github.com/dmitrijs2005/omhauth/internal/server/httpapi"
	"github.com/dmitrijs2005/omhauth/internal/server/metrics"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/omhauth/internal/server/services"
	"github.com/dmitrijs2005/omhauth/internal/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/omhauth/internal/server/grpc"
)

const serviceName = "omhauth"

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	rm       repomanager.RepositoryManager
	registry *prometheus.Registry
	tracer   trace.TracerProvider
	limiter  *httpapi.RateLimiter

	shutdownTracing tracing.ShutdownFunc

	clients       *services.ClientService
	sessions      *services.SessionService
	codes         *services.CodeService
	verifications *services.VerificationService
	tokens        *services.TokenService
}

// newS3Sink is a seam for testing audit.NewS3Sink.
var newS3Sink = func(ctx context.Context, c *config.Config) (audit.Sink, error) {
	return audit.NewS3Sink(ctx, c)
}

// NewApp opens storage, applies migrations and wires the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	slog.SetDefault(logger.Slog())

	db, rm, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if db == nil {
		logger.Warn(ctx, "running with in-memory storage; state is lost on exit")
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("migration error: %w", err)
	}

	tp, shutdown, err := tracing.Setup(c.TracingExporter, serviceName)
	if err != nil {
		closeDB(db)
		return nil, err
	}

	sink, err := buildSink(ctx, c, logger)
	if err != nil {
		closeDB(db)
		_ = shutdown(ctx)
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	identity := services.NewIdentityService(db, rm, logger)
	clients := services.NewClientService(db, rm, logger)
	schemas := services.NewSchemaRegistry(db, rm)
	codes := services.NewCodeService(db, rm, schemas, c, logger)
	verifications := services.NewVerificationService(db, rm, identity, codes, logger)

	return &App{
		config:          c,
		logger:          logger,
		db:              db,
		rm:              rm,
		registry:        registry,
		tracer:          tp,
		shutdownTracing: shutdown,
		limiter:         httpapi.NewRateLimiter(c.RateLimitPerMinute, c.RateLimitBurst, logger),
		clients:         clients,
		sessions:        services.NewSessionService(db, rm, identity, c, logger),
		codes:           codes,
		verifications:   verifications,
		tokens:          services.NewTokenService(db, rm, clients, codes, verifications, sink, c, logger),
	}, nil
}

// buildSink always logs security events and also archives them to S3 when
// a bucket is configured.
func buildSink(ctx context.Context, c *config.Config, logger logging.Logger) (audit.Sink, error) {
	sinks := audit.MultiSink{audit.NewLogSink(logger)}
	if c.AuditS3Bucket != "" {
		s3, err := newS3Sink(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("audit sink error: %w", err)
		}
		sinks = append(sinks, s3)
	}
	return sinks, nil
}

func closeDB(db *sql.DB) {
	if db != nil {
		_ = db.Close()
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) func() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			cancelFunc()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

func (app *App) deps() httpapi.Deps {
	d := httpapi.Deps{
		Sessions:      app.sessions,
		Codes:         app.codes,
		Verifications: app.verifications,
		Tokens:        app.tokens,
		Clients:       app.clients,
		Metrics:       metrics.NewCollector(app.registry),
		Gatherer:      app.registry,
		Tracer:        app.tracer,
		Limiter:       app.limiter,
		AuthorizePage: app.config.AuthorizePage,
		Logger:        app.logger,
	}
	if app.db != nil {
		d.Health = app.db
	}
	return d
}

// Run serves HTTP and gRPC until ctx is done, a signal arrives or either
// server fails, then releases resources.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	stopSignals := app.initSignalHandler(cancelFunc)
	defer stopSignals()
	defer app.close()

	var pinger gs.Pinger
	if app.db != nil {
		pinger = app.db
	}
	grpcServer := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, pinger)
	httpServer := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, httpapi.NewRouter(app.deps()), app.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return grpcServer.Run(gctx) })
	g.Go(func() error { return httpServer.Run(gctx) })

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}

func (app *App) close() {
	ctx := context.Background()
	app.limiter.Stop()
	if err := app.shutdownTracing(ctx); err != nil {
		app.logger.Warn(ctx, "tracing shutdown error", "error", err)
	}
	closeDB(app.db)
}
