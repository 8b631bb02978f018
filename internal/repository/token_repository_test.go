package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStoreAndValidate(t *testing.T) {
	db := openTestDB(t)
	repo := NewTokenRepo(db)
	ctx := context.Background()
	uid := mustCreateUser(t, db, "alice")

	exp := time.Now().UTC().Add(time.Hour)
	require.NoError(t, repo.StoreRefresh(ctx, uid, "hash-1", exp))

	got, err := repo.ValidateRefresh(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, uid, got)

	_, err = repo.ValidateRefresh(ctx, "unknown-hash")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTokenExpired(t *testing.T) {
	db := openTestDB(t)
	repo := NewTokenRepo(db)
	ctx := context.Background()
	uid := mustCreateUser(t, db, "alice")

	require.NoError(t, repo.StoreRefresh(ctx, uid, "hash-1", time.Now().UTC().Add(-time.Minute)))

	_, err := repo.ValidateRefresh(ctx, "hash-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTokenRevokeByHash(t *testing.T) {
	db := openTestDB(t)
	repo := NewTokenRepo(db)
	ctx := context.Background()
	uid := mustCreateUser(t, db, "alice")

	require.NoError(t, repo.StoreRefresh(ctx, uid, "hash-1", time.Now().UTC().Add(time.Hour)))
	require.NoError(t, repo.RevokeByHash(ctx, "hash-1"))

	_, err := repo.ValidateRefresh(ctx, "hash-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTokenRevokeAllForUser(t *testing.T) {
	db := openTestDB(t)
	repo := NewTokenRepo(db)
	ctx := context.Background()
	alice := mustCreateUser(t, db, "alice")
	bob := mustCreateUser(t, db, "bob")

	exp := time.Now().UTC().Add(time.Hour)
	require.NoError(t, repo.StoreRefresh(ctx, alice, "a-1", exp))
	require.NoError(t, repo.StoreRefresh(ctx, alice, "a-2", exp))
	require.NoError(t, repo.StoreRefresh(ctx, bob, "b-1", exp))

	require.NoError(t, repo.RevokeAllForUser(ctx, alice))

	_, err := repo.ValidateRefresh(ctx, "a-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = repo.ValidateRefresh(ctx, "a-2")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	// Bob's session is untouched.
	got, err := repo.ValidateRefresh(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, bob, got)
}
