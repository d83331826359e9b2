package users

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/server/migrations/sqlitetest"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLite_CreateAndGet(t *testing.T) {
	repo := NewSQLiteRepository(sqlitetest.New(t))
	ctx := context.Background()

	a, err := repo.Create(ctx, &models.User{Username: "alice", PasswordHash: "h1"})
	require.NoError(t, err)
	b, err := repo.Create(ctx, &models.User{Username: "bob", PasswordHash: "h2"})
	require.NoError(t, err)
	assert.Greater(t, b.ID, a.ID)

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, &models.User{ID: a.ID, Username: "alice", PasswordHash: "h1"}, got)
}

func TestSQLite_DuplicateUsername(t *testing.T) {
	repo := NewSQLiteRepository(sqlitetest.New(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.User{Username: "alice", PasswordHash: "first"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.User{Username: "alice", PasswordHash: "second"})
	require.ErrorIs(t, err, common.ErrDuplicateUsername)

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "first", got.PasswordHash)
}

func TestSQLite_UsernameIsCaseSensitive(t *testing.T) {
	repo := NewSQLiteRepository(sqlitetest.New(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.User{Username: "alice", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.User{Username: "Alice", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = repo.GetByUsername(ctx, "ALICE")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.GetByUsername(ctx, " alice")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSQLite_GetByUsername_NotFound(t *testing.T) {
	repo := NewSQLiteRepository(sqlitetest.New(t))

	_, err := repo.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
