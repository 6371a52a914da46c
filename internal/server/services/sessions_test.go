package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/omhauth/internal/common"
	"github.com/dmitrijs2005/omhauth/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_IssueAndResolve(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()

	st, err := h.sessions.Issue(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, epoch.Add(h.cfg.SessionTokenValidityDuration), st.ExpiresAt)

	user, ok, err := h.sessions.Resolve(ctx, st.Token)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", user)

	other, err := h.sessions.Issue(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, st.Token, other.Token)
}

func TestSessionService_ResolveExpired(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()

	st, err := h.sessions.Issue(ctx, "alice")
	require.NoError(t, err)

	h.clock.Advance(h.cfg.SessionTokenValidityDuration + time.Second)

	_, ok, err := h.sessions.Resolve(ctx, st.Token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionService_ResolveUnknownButSigned(t *testing.T) {
	h := newHarness(t, false)

	// Validly signed but never stored.
	tok, err := auth.GenerateSessionToken("alice", []byte(h.cfg.SecretKey), epoch, epoch.Add(time.Hour))
	require.NoError(t, err)

	_, ok, err := h.sessions.Resolve(context.Background(), tok)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionService_BadSignatureSkipsStore(t *testing.T) {
	h := newHarness(t, false)
	fake := &fakeSessionTokens{err: common.ErrStoreCorruption}
	h.build(&overrides{MemoryRepositoryManager: h.rm, sessionTokens: fake})

	forged, err := auth.GenerateSessionToken("alice", []byte("other-key"), epoch, epoch.Add(time.Hour))
	require.NoError(t, err)

	for _, tok := range []string{forged, "garbage", ""} {
		_, ok, err := h.sessions.Resolve(context.Background(), tok)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Zero(t, fake.finds)
}

func TestSessionService_CorruptionSurfaces(t *testing.T) {
	h := newHarness(t, false)
	fake := &fakeSessionTokens{err: common.ErrStoreCorruption}
	h.build(&overrides{MemoryRepositoryManager: h.rm, sessionTokens: fake})

	tok, err := auth.GenerateSessionToken("alice", []byte(h.cfg.SecretKey), epoch, epoch.Add(time.Hour))
	require.NoError(t, err)

	_, ok, err := h.sessions.Resolve(context.Background(), tok)
	assert.False(t, ok)
	require.ErrorIs(t, err, ErrStoreCorruption)
	assert.Equal(t, ClassIntegrity, ReasonStoreCorruption.Class())
}

func TestSessionService_CollisionsExhaust(t *testing.T) {
	h := newHarness(t, false)
	fake := &fakeSessionTokens{err: common.ErrDuplicateKey}
	h.build(&overrides{MemoryRepositoryManager: h.rm, sessionTokens: fake})

	_, err := h.sessions.Issue(context.Background(), "alice")
	require.ErrorIs(t, err, ErrTokenGenerationExhausted)
	assert.Equal(t, h.cfg.TokenGenerationAttempts, fake.stores)
}

func TestSessionService_Login(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()

	st, err := h.sessions.Login(ctx, "bob", "bob-password")
	require.NoError(t, err)
	assert.Equal(t, "bob", st.Username)

	_, err = h.sessions.Login(ctx, "bob", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
