package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a post. A nil ParentID marks a top-level
// comment; otherwise ParentID references a top-level comment within the same
// post (one level of nesting only). RepliesCount is maintained for top-level
// comments and stays zero on replies.
type Comment struct {
	ID       uint  `gorm:"primaryKey" json:"id"`
	PostID   uint  `gorm:"not null;index" json:"post_id"`
	ParentID *uint `gorm:"index" json:"parent_comment_id"`
	UserID   uint  `gorm:"not null" json:"user_id"`
	User     User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	// DisplayName is the author's name as resolved at write time. Live
	// subscriptions re-resolve it against the current profile and fall back
	// to this stored value when the lookup fails.
	DisplayName string `json:"display_name"`
	Content     string `gorm:"type:text;not null" json:"content"`

	ReactionCounts ReactionCounts `gorm:"serializer:json" json:"reaction_counts"`
	UserReactions  UserReactions  `gorm:"serializer:json" json:"user_reactions"`
	RepliesCount   int            `gorm:"not null;default:0" json:"replies_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TopLevel reports whether the comment is attached directly to its post.
func (c *Comment) TopLevel() bool {
	return c.ParentID == nil
}
