package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketfront/auth"
	"marketfront/auth/store"
)

func testToken(access string) *auth.Token {
	return &auth.Token{
		GrantType:   auth.GrantClientCredentials,
		AccessToken: access,
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

func TestMemoryClientTokenScopedBySession(t *testing.T) {
	memory := store.NewMemory()
	ctxA := auth.WithSessionID(context.Background(), "session-a")
	ctxB := auth.WithSessionID(context.Background(), "session-b")

	require.NoError(t, memory.StoreClientToken(ctxA, testToken("Bearer a")))

	token, err := memory.ClientToken(ctxA)
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "Bearer a", token.AccessToken)

	token, err = memory.ClientToken(ctxB)
	require.NoError(t, err)
	assert.Nil(t, token, "sessions must not see each other's tokens")
}

func TestMemoryInvalidate(t *testing.T) {
	memory := store.NewMemory()
	ctx := auth.WithSessionID(context.Background(), "session-a")
	require.NoError(t, memory.StoreClientToken(ctx, testToken("Bearer a")))
	require.NoError(t, memory.Invalidate(ctx))

	token, err := memory.ClientToken(ctx)
	require.NoError(t, err)
	assert.Nil(t, token)
}

func TestMemoryUserRoundTrip(t *testing.T) {
	memory := store.NewMemory()
	ctx := context.Background()

	_, err := memory.Lookup(ctx, "1006")
	assert.ErrorIs(t, err, store.ErrPrincipalNotFound)

	principal := &auth.Principal{
		ServiceID:      "1006",
		Name:           "user2",
		Email:          "user2@users.com",
		GrantType:      auth.GrantPassword,
		AccessToken:    "Bearer a1",
		RefreshToken:   "r1",
		TokenExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, memory.Upsert(ctx, principal))

	stored, err := memory.Lookup(ctx, "1006")
	require.NoError(t, err)
	assert.Equal(t, principal, stored)

	// stored copies are isolated from caller mutation
	principal.AccessToken = "Bearer mutated"
	stored, err = memory.Lookup(ctx, "1006")
	require.NoError(t, err)
	assert.Equal(t, "Bearer a1", stored.AccessToken)
}

func TestMemoryUpdateToken(t *testing.T) {
	memory := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, memory.Upsert(ctx, &auth.Principal{
		ServiceID:    "1006",
		GrantType:    auth.GrantPassword,
		AccessToken:  "Bearer a1",
		RefreshToken: "r1",
	}))

	rotated := &auth.Token{
		GrantType:    auth.GrantPassword,
		AccessToken:  "Bearer a2",
		RefreshToken: "r2",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	require.NoError(t, memory.UpdateToken(ctx, "1006", rotated))

	stored, err := memory.Lookup(ctx, "1006")
	require.NoError(t, err)
	assert.Equal(t, "Bearer a2", stored.AccessToken)
	assert.Equal(t, "r2", stored.RefreshToken)
	assert.Equal(t, rotated.ExpiresAt, stored.TokenExpiresAt)

	assert.ErrorIs(t, memory.UpdateToken(ctx, "9999", rotated), store.ErrPrincipalNotFound)
}
