package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientService_Authenticate(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()

	tests := []struct {
		name    string
		id      string
		secret  string
		wantErr error
	}{
		{"ok", h.client.ID, h.client.Secret, nil},
		{"unknown client", "nope", "x", ErrUnknownClient},
		{"empty id", "", "x", ErrUnknownClient},
		{"missing secret", h.client.ID, "", ErrMissingClientSecret},
		{"wrong secret", h.client.ID, h.otherClient.Secret, ErrInvalidClientSecret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp, err := h.clients.Authenticate(ctx, tt.id, tt.secret)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Acme", tp.Name)
		})
	}
}

func TestClientService_Register(t *testing.T) {
	h := newHarness(t, false)

	tp, err := h.clients.Register(context.Background(), "App", "https://app.example/cb", "")
	require.NoError(t, err)
	assert.Len(t, tp.Secret, 64)
	assert.Equal(t, epoch, tp.CreatedAt)

	got, err := h.clients.Get(context.Background(), tp.ID)
	require.NoError(t, err)
	assert.Equal(t, tp.RedirectURI, got.RedirectURI)

	_, err = h.clients.Register(context.Background(), "", "https://x", "")
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = h.clients.Register(context.Background(), "App", "/relative/cb", "")
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestSchemaRegistry_ValidateScope(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()

	require.NoError(t, h.schemas.Register(ctx, "omh:read", 2))

	for scope, want := range map[string]bool{
		"omh:read":  true,
		"omh:write": true,
		"omh:admin": false,
		"":          false,
	} {
		ok, err := h.schemas.ValidateScope(ctx, scope)
		require.NoError(t, err)
		assert.Equal(t, want, ok, scope)
	}
}
