package admin

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/omhauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	username, password string
	err                error
}

func (f *fakeUsers) Register(_ context.Context, username, password string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.username, f.password = username, password
	return &models.User{Username: username}, nil
}

type fakeClients struct {
	got *models.ThirdParty
}

func (f *fakeClients) Register(_ context.Context, name, redirectURI, description string) (*models.ThirdParty, error) {
	f.got = &models.ThirdParty{ID: "id-1", Secret: "s3cr3t", Name: name, RedirectURI: redirectURI, Description: description}
	return f.got, nil
}

type fakeSchemas struct {
	id      string
	version int64
}

func (f *fakeSchemas) Register(_ context.Context, id string, version int64) error {
	f.id, f.version = id, version
	return nil
}

type testApp struct {
	*App
	users    *fakeUsers
	clients  *fakeClients
	schemas  *fakeSchemas
	migrated int
	out      *bytes.Buffer
}

func newTestApp(input string) *testApp {
	ta := &testApp{
		users:   &fakeUsers{},
		clients: &fakeClients{},
		schemas: &fakeSchemas{},
		out:     &bytes.Buffer{},
	}
	ta.App = &App{
		users:   ta.users,
		clients: ta.clients,
		schemas: ta.schemas,
		migrate: func(context.Context) error { ta.migrated++; return nil },
		closeDB: func() error { return nil },
		reader:  bufioReader(input),
		out:     ta.out,
	}
	return ta
}

func stubPasswords(t *testing.T, pws ...string) {
	t.Helper()
	orig := readPassword
	i := 0
	readPassword = func(int) ([]byte, error) {
		if i >= len(pws) {
			return nil, errors.New("no more input")
		}
		pw := []byte(pws[i])
		i++
		return pw, nil
	}
	t.Cleanup(func() { readPassword = orig })
}

func TestExecute_UserAdd(t *testing.T) {
	stubPasswords(t, "hunter2", "hunter2")
	a := newTestApp("")

	require.NoError(t, a.Execute(context.Background(), []string{"user", "add", "alice"}))
	assert.Equal(t, "alice", a.users.username)
	assert.Equal(t, "hunter2", a.users.password)
	assert.Contains(t, a.out.String(), "User alice created.")
}

func TestExecute_UserAdd_PromptsForUsername(t *testing.T) {
	stubPasswords(t, "pw", "pw")
	a := newTestApp("bob\n")

	require.NoError(t, a.Execute(context.Background(), []string{"user", "add"}))
	assert.Equal(t, "bob", a.users.username)
}

func TestExecute_UserAdd_PasswordMismatch(t *testing.T) {
	stubPasswords(t, "hunter2", "hunter3")
	a := newTestApp("")

	err := a.Execute(context.Background(), []string{"user", "add", "alice"})
	assert.EqualError(t, err, "passwords do not match")
	assert.Empty(t, a.users.username)
}

func TestExecute_UserAdd_ServiceError(t *testing.T) {
	stubPasswords(t, "pw", "pw")
	a := newTestApp("")
	a.users.err = errors.New("duplicate")

	assert.EqualError(t, a.Execute(context.Background(), []string{"user", "add", "alice"}), "duplicate")
}

func TestExecute_ClientAdd(t *testing.T) {
	a := newTestApp("")

	require.NoError(t, a.Execute(context.Background(), []string{"client", "add", "Acme", "https://acme.example/cb", "Acme app"}))
	assert.Equal(t, "https://acme.example/cb", a.clients.got.RedirectURI)
	assert.Equal(t, "Acme app", a.clients.got.Description)
	assert.Contains(t, a.out.String(), "client_id:     id-1")
	assert.Contains(t, a.out.String(), "client_secret: s3cr3t")
}

func TestExecute_SchemaAdd(t *testing.T) {
	a := newTestApp("")

	require.NoError(t, a.Execute(context.Background(), []string{"schema", "add", "omh:read", "2"}))
	assert.Equal(t, "omh:read", a.schemas.id)
	assert.EqualValues(t, 2, a.schemas.version)

	err := a.Execute(context.Background(), []string{"schema", "add", "omh:read", "zero"})
	assert.ErrorIs(t, err, ErrUsage)
}

func TestExecute_Migrate(t *testing.T) {
	a := newTestApp("")

	require.NoError(t, a.Execute(context.Background(), []string{"migrate"}))
	assert.Equal(t, 1, a.migrated)
}

func TestExecute_UsageErrors(t *testing.T) {
	a := newTestApp("")

	for _, args := range [][]string{
		nil,
		{"user"},
		{"user", "remove", "alice"},
		{"client", "add", "Acme"},
		{"schema", "add", "omh:read"},
		{"frobnicate"},
	} {
		assert.ErrorIs(t, a.Execute(context.Background(), args), ErrUsage, strings.Join(args, " "))
	}
}

func TestRoot_RunsCommandsUntilExit(t *testing.T) {
	a := newTestApp("help\n\nmigrate\nbogus\nexit\nmigrate\n")

	a.Root(context.Background())

	out := a.out.String()
	assert.Contains(t, out, "Available commands")
	assert.Contains(t, out, "unknown command")
	assert.Contains(t, out, "Bye!")
	assert.Equal(t, 1, a.migrated)
}

func TestRoot_StopsAtEOF(t *testing.T) {
	a := newTestApp("migrate")

	a.Root(context.Background())
	assert.Equal(t, 1, a.migrated)
}

func TestRun_DispatchesArgs(t *testing.T) {
	a := newTestApp("")
	closed := false
	a.closeDB = func() error { closed = true; return nil }

	require.NoError(t, a.Run(context.Background(), []string{"migrate"}))
	assert.Equal(t, 1, a.migrated)
	assert.True(t, closed)
}
