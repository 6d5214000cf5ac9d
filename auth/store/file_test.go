package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketfront/auth"
	"marketfront/auth/store"
)

func TestFileSessionSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.json")
	ctx := context.Background()

	first := store.NewFileSession(path)
	token, err := first.ClientToken(ctx)
	require.NoError(t, err)
	assert.Nil(t, token, "a missing file starts empty")

	stored := &auth.Token{
		GrantType:   auth.GrantClientCredentials,
		AccessToken: "Bearer persisted",
		ExpiresAt:   time.Now().Add(time.Hour).Truncate(time.Second),
	}
	require.NoError(t, first.StoreClientToken(ctx, stored))

	second := store.NewFileSession(path)
	token, err = second.ClientToken(ctx)
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "Bearer persisted", token.AccessToken)
	assert.True(t, stored.ExpiresAt.Equal(token.ExpiresAt))
}
