package authtokens

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/omhauth/internal/common"
	"github.com/dmitrijs2005/omhauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

const (
	insertQ    = `(?s)^INSERT\s+INTO\s+authorization_tokens\b.*VALUES\s*\(\$1,.*\$8\)\s+ON\s+CONFLICT\s+DO\s+NOTHING\s*$`
	freshQ     = `(?s)^SELECT\s+access_token,.*FROM\s+authorization_tokens\s+WHERE\s+access_token\s*=\s*\$1\s+AND\s+expires_at\s*>\s*\$2\s*$`
	byRefreshQ = `(?s)^SELECT\s+access_token,.*FROM\s+authorization_tokens\s+WHERE\s+refresh_token\s*=\s*\$1\s*$`
)

var cols = []string{"access_token", "refresh_token", "username", "third_party_id", "scopes", "code", "created_at", "expires_at"}

func sample(now time.Time) *models.AuthorizationToken {
	return &models.AuthorizationToken{
		AccessToken: "at", RefreshToken: "rt", Username: "alice", ThirdPartyID: "tp",
		Scopes: []string{"omh:read"}, Code: "c1", CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}
}

func TestStoreIfAbsent(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name    string
		setup   func(m sqlmock.Sqlmock)
		wantErr error
		wantMsg string
	}{
		{
			name: "ok",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectExec(insertQ).
					WithArgs("at", "rt", "alice", "tp", "omh:read", "c1", now, now.Add(time.Hour)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "either token taken",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectExec(insertQ).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: common.ErrDuplicateKey,
		},
		{
			name: "exec error",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectExec(insertQ).WillReturnError(errors.New("boom"))
			},
			wantMsg: "error performing sql request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()
			tt.setup(mock)

			err := repo.StoreIfAbsent(context.Background(), sample(now))
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.wantMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantMsg)
			default:
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFindFresh(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(freshQ).WithArgs("at", now).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("at", "rt", "alice", "tp", "omh:read omh:write", "c1", now, now.Add(time.Hour)))

	got, err := repo.FindFresh(context.Background(), "at", now)
	require.NoError(t, err)
	assert.Equal(t, "rt", got.RefreshToken)
	assert.Equal(t, []string{"omh:read", "omh:write"}, got.Scopes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByRefreshToken(t *testing.T) {
	now := time.Now().UTC()

	t.Run("expired credential still found", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()
		mock.ExpectQuery(byRefreshQ).WithArgs("rt").
			WillReturnRows(sqlmock.NewRows(cols).AddRow("at", "rt", "alice", "tp", "omh:read", "c1", now.Add(-2*time.Hour), now.Add(-time.Hour)))

		got, err := repo.FindByRefreshToken(context.Background(), "rt")
		require.NoError(t, err)
		assert.Equal(t, "at", got.AccessToken)
	})

	t.Run("duplicate rows", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()
		mock.ExpectQuery(byRefreshQ).WithArgs("rt").
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow("at", "rt", "alice", "tp", "", "c1", now, now).
				AddRow("at2", "rt", "alice", "tp", "", "c1", now, now))

		_, err := repo.FindByRefreshToken(context.Background(), "rt")
		require.ErrorIs(t, err, common.ErrStoreCorruption)
	})
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	repo := NewMemoryRepository()

	require.NoError(t, repo.StoreIfAbsent(ctx, sample(now)))

	clash := sample(now)
	clash.AccessToken = "other"
	require.ErrorIs(t, repo.StoreIfAbsent(ctx, clash), common.ErrDuplicateKey)

	got, err := repo.FindByRefreshToken(ctx, "rt")
	require.NoError(t, err)
	assert.Equal(t, "at", got.AccessToken)

	_, err = repo.FindFresh(ctx, "at", now.Add(2*time.Hour))
	require.ErrorIs(t, err, common.ErrorNotFound)
}
