package service

import (
	"context"
	"errors"
	"testing"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn    func(context.Context, uint) (*models.User, error)
	getByEmailFn func(context.Context, string) (*models.User, error)
	createFn     func(context.Context, *models.User) error
	updateFn     func(context.Context, *models.User) error
	listFn       func(context.Context, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, DisplayName: "Stub User"}, nil
		},
		getByEmailFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:     func(_ context.Context, _ *models.User) error { return nil },
		updateFn:     func(_ context.Context, _ *models.User) error { return nil },
		listFn:       func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn          func(context.Context, *models.Post) error
	getByIDFn         func(context.Context, uint) (*models.Post, error)
	listFn            func(context.Context, int, int) ([]models.Post, error)
	listByUserFn      func(context.Context, uint, int, int) ([]models.Post, error)
	updateFn          func(context.Context, *models.Post) error
	deleteFn          func(context.Context, uint) error
	incrementSharesFn func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *postRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	return s.listByUserFn(ctx, userID, limit, offset)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) IncrementShares(ctx context.Context, id uint) error {
	return s.incrementSharesFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:          func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:         func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		listFn:            func(_ context.Context, _, _ int) ([]models.Post, error) { return nil, nil },
		listByUserFn:      func(_ context.Context, _ uint, _, _ int) ([]models.Post, error) { return nil, nil },
		updateFn:          func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:          func(_ context.Context, _ uint) error { return nil },
		incrementSharesFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn       func(context.Context, *models.Comment) error
	getByIDFn      func(context.Context, uint) (*models.Comment, error)
	listTopLevelFn func(context.Context, uint) ([]models.Comment, error)
	listRepliesFn  func(context.Context, uint, uint) ([]models.Comment, error)
	updateFn       func(context.Context, *models.Comment) error
	deleteFn       func(context.Context, *models.Comment) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListTopLevel(ctx context.Context, postID uint) ([]models.Comment, error) {
	return s.listTopLevelFn(ctx, postID)
}
func (s *commentRepoStub) ListReplies(ctx context.Context, postID, parentID uint) ([]models.Comment, error) {
	return s.listRepliesFn(ctx, postID, parentID)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) Delete(ctx context.Context, comment *models.Comment) error {
	return s.deleteFn(ctx, comment)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:       func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:      func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listTopLevelFn: func(_ context.Context, _ uint) ([]models.Comment, error) { return nil, nil },
		listRepliesFn:  func(_ context.Context, _, _ uint) ([]models.Comment, error) { return nil, nil },
		updateFn:       func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn:       func(_ context.Context, _ *models.Comment) error { return nil },
	}
}

// assertCode asserts that err is an AppError with the given code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
