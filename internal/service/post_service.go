package service

import (
	"context"
	"strings"

	"ripple/internal/cache"
	"ripple/internal/models"
	"ripple/internal/reactions"
	"ripple/internal/realtime"
	"ripple/internal/repository"
)

const maxPostLen = 50000

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	ledger   *reactions.Ledger
	broker   realtime.Broker
}

type CreatePostInput struct {
	UserID  uint
	Content string
}

type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Content string
}

type ListPostsInput struct {
	Limit  int
	Offset int
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	ledger *reactions.Ledger,
	broker realtime.Broker,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		ledger:   ledger,
		broker:   broker,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.UserID == 0 {
		return nil, models.NewUnauthenticatedError("authentication required to post")
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewEmptyContentError("post content")
	}
	if len(content) > maxPostLen {
		return nil, models.NewValidationError("content too long (max 50000 characters)")
	}

	author, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:         in.UserID,
		Content:        content,
		DisplayName:    author.FullDisplayName(),
		PhotoURL:       author.PhotoURL,
		ReactionCounts: models.NewReactionCounts(),
		UserReactions:  models.UserReactions{},
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	s.notifyFeed(ctx, "post_created")
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID)
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]models.Post, error) {
	limit := in.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.postRepo.List(ctx, limit, in.Offset)
}

func (s *PostService) ListUserPosts(ctx context.Context, userID uint, in ListPostsInput) ([]models.Post, error) {
	limit := in.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.postRepo.ListByUser(ctx, userID, limit, in.Offset)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if in.UserID == 0 {
		return nil, models.NewUnauthenticatedError("authentication required")
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewEmptyContentError("post content")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("you can only edit your own posts")
	}

	post.Content = content
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	cache.InvalidatePost(ctx, post.ID)
	s.notifyFeed(ctx, "post_updated")
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	if userID == 0 {
		return models.NewUnauthenticatedError("authentication required")
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("you can only delete your own posts")
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	cache.InvalidatePost(ctx, postID)
	s.notifyFeed(ctx, "post_deleted")
	return nil
}

// SharePost records one share of the post.
func (s *PostService) SharePost(ctx context.Context, userID, postID uint) error {
	if userID == 0 {
		return models.NewUnauthenticatedError("authentication required to share")
	}
	if err := s.postRepo.IncrementShares(ctx, postID); err != nil {
		return err
	}
	cache.InvalidatePost(ctx, postID)
	s.notifyFeed(ctx, "post_shared")
	return nil
}

// React toggles the user's reaction on the post.
func (s *PostService) React(ctx context.Context, userID, postID uint, kind models.ReactionKind) (*reactions.ToggleResult, error) {
	result, err := s.ledger.TogglePost(ctx, userID, postID, kind)
	if err != nil {
		return nil, err
	}
	cache.InvalidatePost(ctx, postID)
	s.notifyFeed(ctx, "post_reacted")
	return result, nil
}

func (s *PostService) notifyFeed(ctx context.Context, event string) {
	if s.broker == nil {
		return
	}
	// Tick payloads only name the event; subscribers re-read the feed.
	_ = s.broker.Publish(ctx, realtime.FeedChannel, event)
}
