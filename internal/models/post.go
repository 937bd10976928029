package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a feed post in the Ripple application. The author's display
// name and photo are denormalized onto the post at creation time so the feed
// can render without a join; reaction bookkeeping lives on the row itself as
// two JSON columns kept consistent by the reaction ledger.
type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	User    User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content string `gorm:"type:text;not null" json:"content"`

	DisplayName string `json:"author_display_name"`
	PhotoURL    string `json:"author_photo_url,omitempty"`

	ReactionCounts ReactionCounts `gorm:"serializer:json" json:"reaction_counts"`
	UserReactions  UserReactions  `gorm:"serializer:json" json:"user_reactions"`
	CommentsCount  int            `gorm:"not null;default:0" json:"comments_count"`
	SharesCount    int            `gorm:"not null;default:0" json:"shares_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
