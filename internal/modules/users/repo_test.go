package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnora.com/app/internal/testutil"
)

func TestRepo_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(testutil.NewDB(t, &User{}))

	u, err := repo.Create(ctx, CreateInput{Name: " Asha ", Email: "Asha@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Asha", u.Name)
	assert.Equal(t, "asha@example.com", u.Email)
	assert.Equal(t, RoleStudent, u.Role)

	got, err := repo.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	ok, err := repo.Exists(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRepo_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(testutil.NewDB(t, &User{}))

	_, err := repo.Create(ctx, CreateInput{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, CreateInput{Name: "B", Email: "A@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRepo_Missing(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(testutil.NewDB(t, &User{}))

	_, err := repo.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := repo.Exists(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}
