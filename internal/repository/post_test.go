package repository

import (
	"context"
	"testing"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_EmptyListingsAreNotNil(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	posts, err := repo.List(ctx, 20, 0)
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)

	posts, err = repo.ListByUser(ctx, 42, 20, 0)
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestPostRepository_DeleteMissingIsNotFound(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	repo := NewPostRepository(db)

	err := repo.Delete(context.Background(), 999)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}
