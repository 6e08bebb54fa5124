package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollenai/assistant/internal/agent/model"
)

func TestCredentialStore_GetMissingReturnsNil(t *testing.T) {
	store := NewRedisCredentialStore(testRedis(t))

	cred, err := store.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, cred)
}

func TestCredentialStore_PutThenGet(t *testing.T) {
	ctx := context.Background()
	store := NewRedisCredentialStore(testRedis(t))

	require.NoError(t, store.Put(ctx, model.UserCredential{
		UserID:       "u1",
		AccessToken:  "at",
		RefreshToken: "rt",
		Email:        "u1@example.com",
		Name:         "User One",
	}))

	cred, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, "u1", cred.UserID)
	assert.Equal(t, "at", cred.AccessToken)
	assert.Equal(t, "rt", cred.RefreshToken)
	assert.Equal(t, "u1@example.com", cred.Email)
}

func TestCredentialStore_PutUpserts(t *testing.T) {
	ctx := context.Background()
	store := NewRedisCredentialStore(testRedis(t))

	require.NoError(t, store.Put(ctx, model.UserCredential{UserID: "u1", AccessToken: "old", RefreshToken: "rt"}))
	require.NoError(t, store.Put(ctx, model.UserCredential{UserID: "u1", AccessToken: "new", RefreshToken: "rt"}))

	cred, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, "new", cred.AccessToken)
}
