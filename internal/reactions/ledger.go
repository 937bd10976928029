// Package reactions maintains the per-entity reaction tallies. Every
// toggle runs as a transactional read-modify-write so concurrent toggles
// on the same row cannot lose updates.
package reactions

import (
	"context"
	"errors"

	"ripple/internal/models"
	"ripple/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ToggleResult describes the outcome of a single toggle.
type ToggleResult struct {
	// Previous is the kind the user had before the toggle, empty if none.
	Previous models.ReactionKind `json:"previous,omitempty"`
	// Active is true when the user holds a reaction after the toggle.
	Active bool `json:"active"`
	// Counts is the full tally after the toggle.
	Counts models.ReactionCounts `json:"counts"`
}

// Ledger applies reaction toggles to posts and comments.
type Ledger struct {
	db *gorm.DB
}

// NewLedger creates a reaction ledger backed by the given database.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// TogglePost toggles the user's reaction of the given kind on a post.
// Reacting with the held kind removes it, reacting with a different kind
// switches, and reacting with no prior reaction adds one.
func (l *Ledger) TogglePost(ctx context.Context, userID, postID uint, kind models.ReactionKind) (*ToggleResult, error) {
	if userID == 0 {
		return nil, models.NewUnauthenticatedError("authentication required to react")
	}
	if !kind.Valid() {
		return nil, models.NewValidationError("unknown reaction kind: " + string(kind))
	}

	var result ToggleResult
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := lockRow(tx).First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", postID)
			}
			return models.NewRemoteFaultError(err)
		}

		if post.ReactionCounts == nil {
			post.ReactionCounts = models.NewReactionCounts()
		}
		if post.UserReactions == nil {
			post.UserReactions = models.UserReactions{}
		}

		prev, active := models.ToggleReaction(post.ReactionCounts, post.UserReactions, userID, kind)
		err := tx.Model(&post).Select("reaction_counts", "user_reactions").Updates(models.Post{
			ReactionCounts: post.ReactionCounts,
			UserReactions:  post.UserReactions,
		}).Error
		if err != nil {
			return models.NewRemoteFaultError(err)
		}

		result = ToggleResult{Previous: prev, Active: active, Counts: post.ReactionCounts}
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.ReactionToggles.WithLabelValues("post", string(kind)).Inc()
	return &result, nil
}

// ToggleComment toggles the user's reaction of the given kind on a comment.
func (l *Ledger) ToggleComment(ctx context.Context, userID, commentID uint, kind models.ReactionKind) (*ToggleResult, error) {
	if userID == 0 {
		return nil, models.NewUnauthenticatedError("authentication required to react")
	}
	if !kind.Valid() {
		return nil, models.NewValidationError("unknown reaction kind: " + string(kind))
	}

	var result ToggleResult
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := lockRow(tx).First(&comment, commentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Comment", commentID)
			}
			return models.NewRemoteFaultError(err)
		}

		if comment.ReactionCounts == nil {
			comment.ReactionCounts = models.NewReactionCounts()
		}
		if comment.UserReactions == nil {
			comment.UserReactions = models.UserReactions{}
		}

		prev, active := models.ToggleReaction(comment.ReactionCounts, comment.UserReactions, userID, kind)
		err := tx.Model(&comment).Select("reaction_counts", "user_reactions").Updates(models.Comment{
			ReactionCounts: comment.ReactionCounts,
			UserReactions:  comment.UserReactions,
		}).Error
		if err != nil {
			return models.NewRemoteFaultError(err)
		}

		result = ToggleResult{Previous: prev, Active: active, Counts: comment.ReactionCounts}
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.ReactionToggles.WithLabelValues("comment", string(kind)).Inc()
	return &result, nil
}

// lockRow adds a row lock on dialects that support it. SQLite serializes
// writers on its own and rejects FOR UPDATE.
func lockRow(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
