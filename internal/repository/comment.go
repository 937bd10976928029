package repository

import (
	"context"
	"errors"

	"ripple/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations.
// Create and Delete maintain the denormalized counters on the parent
// entities inside a single transaction.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListTopLevel(ctx context.Context, postID uint) ([]models.Comment, error)
	ListReplies(ctx context.Context, postID, parentID uint) ([]models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, comment *models.Comment) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts the comment and bumps the relevant counter. Top-level
// comments increment the post's comments_count; replies increment the
// parent comment's replies_count. Replies to replies are rejected, as is
// a parent that belongs to a different post.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, comment.PostID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", comment.PostID)
			}
			return models.NewRemoteFaultError(err)
		}

		if comment.ParentID != nil {
			var parent models.Comment
			if err := tx.First(&parent, *comment.ParentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return models.NewNotFoundError("Comment", *comment.ParentID)
				}
				return models.NewRemoteFaultError(err)
			}
			if parent.PostID != comment.PostID {
				return models.NewNotFoundError("Comment", *comment.ParentID)
			}
			if parent.ParentID != nil {
				return models.NewValidationError("replies to replies are not supported")
			}
		}

		if err := tx.Create(comment).Error; err != nil {
			return models.NewRemoteFaultError(err)
		}

		if comment.ParentID == nil {
			err := tx.Model(&models.Post{}).
				Where("id = ?", comment.PostID).
				UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error
			if err != nil {
				return models.NewRemoteFaultError(err)
			}
		} else {
			err := tx.Model(&models.Comment{}).
				Where("id = ?", *comment.ParentID).
				UpdateColumn("replies_count", gorm.Expr("replies_count + 1")).Error
			if err != nil {
				return models.NewRemoteFaultError(err)
			}
		}
		return nil
	})
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewRemoteFaultError(err)
	}
	return &comment, nil
}

// ListTopLevel returns the post's top-level comments. Ordering is left to
// the caller so the synchronizer can apply its own sort.
func (r *commentRepository) ListTopLevel(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments := make([]models.Comment, 0)
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND parent_id IS NULL", postID).
		Find(&comments).Error
	if err != nil {
		return nil, models.NewRemoteFaultError(err)
	}
	return comments, nil
}

func (r *commentRepository) ListReplies(ctx context.Context, postID, parentID uint) ([]models.Comment, error) {
	comments := make([]models.Comment, 0)
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND parent_id = ?", postID, parentID).
		Find(&comments).Error
	if err != nil {
		return nil, models.NewRemoteFaultError(err)
	}
	return comments, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Save(comment).Error; err != nil {
		return models.NewRemoteFaultError(err)
	}
	return nil
}

// Delete removes the comment and decrements the relevant counter. Replies
// of a deleted top-level comment are left in place; they simply become
// unreachable through the thread listing.
func (r *commentRepository) Delete(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Comment{}, comment.ID)
		if result.Error != nil {
			return models.NewRemoteFaultError(result.Error)
		}
		if result.RowsAffected == 0 {
			return models.NewNotFoundError("Comment", comment.ID)
		}

		if comment.ParentID == nil {
			err := tx.Model(&models.Post{}).
				Where("id = ? AND comments_count > 0", comment.PostID).
				UpdateColumn("comments_count", gorm.Expr("comments_count - 1")).Error
			if err != nil {
				return models.NewRemoteFaultError(err)
			}
		} else {
			err := tx.Model(&models.Comment{}).
				Where("id = ? AND replies_count > 0", *comment.ParentID).
				UpdateColumn("replies_count", gorm.Expr("replies_count - 1")).Error
			if err != nil {
				return models.NewRemoteFaultError(err)
			}
		}
		return nil
	})
}
