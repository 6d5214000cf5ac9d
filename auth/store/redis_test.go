package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketfront/auth"
	"marketfront/auth/store"
)

func newRedisSessions(t *testing.T) (*store.RedisSessions, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return store.NewRedisSessions(client), mr
}

func TestRedisSessionsRoundTrip(t *testing.T) {
	sessions, _ := newRedisSessions(t)
	ctx := auth.WithSessionID(context.Background(), "session-a")

	token, err := sessions.ClientToken(ctx)
	require.NoError(t, err)
	assert.Nil(t, token, "an empty cache reads as absent, not as an error")

	stored := &auth.Token{
		GrantType:   auth.GrantClientCredentials,
		AccessToken: "Bearer abc",
		ExpiresAt:   time.Now().Add(time.Hour).Truncate(time.Second),
	}
	require.NoError(t, sessions.StoreClientToken(ctx, stored))

	token, err = sessions.ClientToken(ctx)
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, stored.AccessToken, token.AccessToken)
	assert.True(t, stored.ExpiresAt.Equal(token.ExpiresAt))
}

func TestRedisSessionsScopedBySession(t *testing.T) {
	sessions, _ := newRedisSessions(t)
	ctxA := auth.WithSessionID(context.Background(), "session-a")
	ctxB := auth.WithSessionID(context.Background(), "session-b")

	require.NoError(t, sessions.StoreClientToken(ctxA, testToken("Bearer a")))

	token, err := sessions.ClientToken(ctxB)
	require.NoError(t, err)
	assert.Nil(t, token)
}

func TestRedisSessionsEntryExpiresWithToken(t *testing.T) {
	sessions, mr := newRedisSessions(t)
	ctx := auth.WithSessionID(context.Background(), "session-a")

	short := &auth.Token{
		GrantType:   auth.GrantClientCredentials,
		AccessToken: "Bearer short",
		ExpiresAt:   time.Now().Add(2 * time.Second),
	}
	require.NoError(t, sessions.StoreClientToken(ctx, short))

	mr.FastForward(3 * time.Second)

	token, err := sessions.ClientToken(ctx)
	require.NoError(t, err)
	assert.Nil(t, token, "Redis evicts the entry when the token would be stale")
}

func TestRedisSessionsInvalidate(t *testing.T) {
	sessions, _ := newRedisSessions(t)
	ctx := auth.WithSessionID(context.Background(), "session-a")
	require.NoError(t, sessions.StoreClientToken(ctx, testToken("Bearer a")))
	require.NoError(t, sessions.Invalidate(ctx))

	token, err := sessions.ClientToken(ctx)
	require.NoError(t, err)
	assert.Nil(t, token)
}
