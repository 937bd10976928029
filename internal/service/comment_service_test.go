package service

import (
	"context"
	"strings"
	"testing"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_AddComment_Validation(t *testing.T) {
	t.Parallel()

	svc := NewCommentService(noopCommentRepo(), noopUserRepo(), nil, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		input AddCommentInput
		code  string
	}{
		{
			name:  "unauthenticated",
			input: AddCommentInput{UserID: 0, PostID: 1, Content: "hi"},
			code:  models.CodeUnauthenticated,
		},
		{
			name:  "empty content",
			input: AddCommentInput{UserID: 1, PostID: 1, Content: ""},
			code:  models.CodeEmptyContent,
		},
		{
			name:  "whitespace only content",
			input: AddCommentInput{UserID: 1, PostID: 1, Content: " \n "},
			code:  models.CodeEmptyContent,
		},
		{
			name:  "content too long",
			input: AddCommentInput{UserID: 1, PostID: 1, Content: strings.Repeat("x", 10001)},
			code:  models.CodeValidation,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.AddComment(ctx, tt.input)
			assertCode(t, err, tt.code)
		})
	}
}

func TestCommentService_AddComment_SnapshotsAuthorName(t *testing.T) {
	t.Parallel()

	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, DisplayName: "Commenter"}, nil
	}
	svc := NewCommentService(noopCommentRepo(), users, nil, nil)

	parentID := uint(4)
	comment, err := svc.AddComment(context.Background(), AddCommentInput{
		UserID:   2,
		PostID:   1,
		ParentID: &parentID,
		Content:  "a reply",
	})
	require.NoError(t, err)
	assert.Equal(t, "Commenter", comment.DisplayName)
	require.NotNil(t, comment.ParentID)
	assert.Equal(t, parentID, *comment.ParentID)
	assert.False(t, comment.TopLevel())
}

func TestCommentService_UpdateComment_Ownership(t *testing.T) {
	t.Parallel()

	comments := noopCommentRepo()
	comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, PostID: 3, UserID: 5, Content: "original"}, nil
	}
	svc := NewCommentService(comments, noopUserRepo(), nil, nil)
	ctx := context.Background()

	_, err := svc.UpdateComment(ctx, UpdateCommentInput{UserID: 6, PostID: 3, CommentID: 1, Content: "edited"})
	assertCode(t, err, models.CodeForbidden)

	updated, err := svc.UpdateComment(ctx, UpdateCommentInput{UserID: 5, PostID: 3, CommentID: 1, Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
}

func TestCommentService_MutationsScopedToPost(t *testing.T) {
	t.Parallel()

	comments := noopCommentRepo()
	comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, PostID: 3, UserID: 5, Content: "original"}, nil
	}
	deleted := false
	comments.deleteFn = func(_ context.Context, _ *models.Comment) error {
		deleted = true
		return nil
	}
	svc := NewCommentService(comments, noopUserRepo(), nil, nil)
	ctx := context.Background()

	// A comment addressed through another post's path is not found, even
	// for its owner.
	_, err := svc.UpdateComment(ctx, UpdateCommentInput{UserID: 5, PostID: 99, CommentID: 1, Content: "edited"})
	assertCode(t, err, models.CodeNotFound)

	err = svc.DeleteComment(ctx, 5, 99, 1)
	assertCode(t, err, models.CodeNotFound)
	assert.False(t, deleted)

	_, err = svc.React(ctx, 5, 99, 1, models.ReactionLike)
	assertCode(t, err, models.CodeNotFound)
}

func TestCommentService_DeleteComment_Ownership(t *testing.T) {
	t.Parallel()

	deleted := false
	comments := noopCommentRepo()
	comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, PostID: 3, UserID: 5}, nil
	}
	comments.deleteFn = func(_ context.Context, _ *models.Comment) error {
		deleted = true
		return nil
	}
	svc := NewCommentService(comments, noopUserRepo(), nil, nil)
	ctx := context.Background()

	err := svc.DeleteComment(ctx, 6, 3, 1)
	assertCode(t, err, models.CodeForbidden)
	assert.False(t, deleted)

	require.NoError(t, svc.DeleteComment(ctx, 5, 3, 1))
	assert.True(t, deleted)
}

func TestCommentService_DeleteComment_NotFoundPropagates(t *testing.T) {
	t.Parallel()

	comments := noopCommentRepo()
	comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return nil, models.NewNotFoundError("Comment", id)
	}
	svc := NewCommentService(comments, noopUserRepo(), nil, nil)

	err := svc.DeleteComment(context.Background(), 5, 1, 99)
	assertCode(t, err, models.CodeNotFound)
}
