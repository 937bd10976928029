package service

import (
	"context"
	"strings"

	"ripple/internal/models"
	"ripple/internal/reactions"
	"ripple/internal/realtime"
	"ripple/internal/repository"
)

const maxCommentLen = 10000

type CommentService struct {
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
	ledger      *reactions.Ledger
	broker      realtime.Broker
}

type AddCommentInput struct {
	UserID  uint
	PostID  uint
	// ParentID is nil for a top-level comment and set for a reply.
	ParentID *uint
	Content  string
}

type UpdateCommentInput struct {
	UserID    uint
	PostID    uint
	CommentID uint
	Content   string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
	ledger *reactions.Ledger,
	broker realtime.Broker,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		userRepo:    userRepo,
		ledger:      ledger,
		broker:      broker,
	}
}

// AddComment creates a top-level comment or a reply and bumps the
// corresponding counter.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	if in.UserID == 0 {
		return nil, models.NewUnauthenticatedError("authentication required to comment")
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewEmptyContentError("comment content")
	}
	if len(content) > maxCommentLen {
		return nil, models.NewValidationError("content too long (max 10000 characters)")
	}

	author, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:         in.PostID,
		ParentID:       in.ParentID,
		UserID:         in.UserID,
		DisplayName:    author.FullDisplayName(),
		Content:        content,
		ReactionCounts: models.NewReactionCounts(),
		UserReactions:  models.UserReactions{},
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.notifyThread(ctx, in.PostID, "comment_added")
	return comment, nil
}

func (s *CommentService) GetComment(ctx context.Context, commentID uint) (*models.Comment, error) {
	return s.commentRepo.GetByID(ctx, commentID)
}

// getInPost loads the comment and verifies it belongs to the given post.
// A comment addressed through the wrong post path does not exist as far
// as the caller is concerned.
func (s *CommentService) getInPost(ctx context.Context, postID, commentID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.PostID != postID {
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	return comment, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	if in.UserID == 0 {
		return nil, models.NewUnauthenticatedError("authentication required")
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewEmptyContentError("comment content")
	}

	comment, err := s.getInPost(ctx, in.PostID, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != in.UserID {
		return nil, models.NewForbiddenError("you can only edit your own comments")
	}

	comment.Content = content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	s.notifyThread(ctx, comment.PostID, "comment_updated")
	return comment, nil
}

// DeleteComment removes the comment and decrements the relevant counter.
// Replies of a deleted top-level comment are not cascaded.
func (s *CommentService) DeleteComment(ctx context.Context, userID, postID, commentID uint) error {
	if userID == 0 {
		return models.NewUnauthenticatedError("authentication required")
	}

	comment, err := s.getInPost(ctx, postID, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return models.NewForbiddenError("you can only delete your own comments")
	}

	if err := s.commentRepo.Delete(ctx, comment); err != nil {
		return err
	}

	s.notifyThread(ctx, comment.PostID, "comment_deleted")
	return nil
}

// React toggles the user's reaction on the comment.
func (s *CommentService) React(ctx context.Context, userID, postID, commentID uint, kind models.ReactionKind) (*reactions.ToggleResult, error) {
	comment, err := s.getInPost(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}

	result, err := s.ledger.ToggleComment(ctx, userID, commentID, kind)
	if err != nil {
		return nil, err
	}

	s.notifyThread(ctx, comment.PostID, "comment_reacted")
	return result, nil
}

func (s *CommentService) notifyThread(ctx context.Context, postID uint, event string) {
	if s.broker == nil {
		return
	}
	_ = s.broker.Publish(ctx, realtime.PostCommentsChannel(postID), event)
}
