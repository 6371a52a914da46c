package admin

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"

	"github.com/dmitrijs2005/omhauth/internal/logging"
	"github.com/dmitrijs2005/omhauth/internal/server/config"
	"github.com/dmitrijs2005/omhauth/internal/server/models"
	"github.com/dmitrijs2005/omhauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/omhauth/internal/server/services"
)

// ErrMemoryStore is returned when the configured DSN selects memory mode,
// where nothing provisioned would outlive the command.
var ErrMemoryStore = errors.New("admin commands need a persistent database")

type UserRegistrar interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
}

type ClientRegistrar interface {
	Register(ctx context.Context, name, redirectURI, description string) (*models.ThirdParty, error)
}

type SchemaRegistrar interface {
	Register(ctx context.Context, id string, version int64) error
}

type App struct {
	users   UserRegistrar
	clients ClientRegistrar
	schemas SchemaRegistrar
	migrate func(ctx context.Context) error
	closeDB func() error

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the configured database and wires the registration
// services over it.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	db, rm, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, ErrMemoryStore
	}

	log := logging.NewJSONLogger(os.Stderr, c.LogLevel)

	return &App{
		users:   services.NewIdentityService(db, rm, log),
		clients: services.NewClientService(db, rm, log),
		schemas: services.NewSchemaRegistry(db, rm),
		migrate: func(ctx context.Context) error { return rm.RunMigrations(ctx, db) },
		closeDB: db.Close,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// Run executes args, or starts the interactive prompt when there are none.
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.Close()

	if len(args) == 0 {
		a.Root(ctx)
		return nil
	}
	return a.Execute(ctx, args)
}

func (a *App) Close() {
	if a.closeDB != nil {
		_ = a.closeDB()
	}
}
