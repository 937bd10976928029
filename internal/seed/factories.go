// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"ripple/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand
	opts Options
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
		opts: opts,
	}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	first := gofakeit.FirstName()
	last := gofakeit.LastName()
	user := &models.User{
		Email:       gofakeit.Email(),
		FirstName:   first,
		LastName:    last,
		DisplayName: first + " " + last,
		PhotoURL:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post for the given author without persisting it.
// Useful for batching.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		UserID:         user.ID,
		Content:        gofakeit.Paragraph(1, 3, 5, "\n"),
		DisplayName:    user.FullDisplayName(),
		PhotoURL:       user.PhotoURL,
		ReactionCounts: models.NewReactionCounts(),
		UserReactions:  models.UserReactions{},
	}

	// realistic created_at spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rand.Intn(maxDays)
	hoursBack := f.rand.Intn(24)
	minsBack := f.rand.Intn(60)
	post.CreatedAt = time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour -
			time.Duration(hoursBack)*time.Hour -
			time.Duration(minsBack)*time.Minute)

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost constructs and persists a sample post for the given author.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(user, overrides...)
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePostsBatch persists multiple posts in a single DB call when possible.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.Create(&posts).Error
}

// CreateComment constructs and persists a comment. A non-nil parent makes
// it a reply, with the counters maintained to match.
func (f *Factory) CreateComment(user *models.User, post *models.Post, parent *models.Comment, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:         post.ID,
		UserID:         user.ID,
		DisplayName:    user.FullDisplayName(),
		Content:        gofakeit.Sentence(f.rand.Intn(12) + 3),
		ReactionCounts: models.NewReactionCounts(),
		UserReactions:  models.UserReactions{},
	}
	if parent != nil {
		comment.ParentID = &parent.ID
		comment.CreatedAt = parent.CreatedAt.Add(time.Duration(f.rand.Intn(120)+1) * time.Minute)
	} else {
		comment.CreatedAt = post.CreatedAt.Add(time.Duration(f.rand.Intn(600)+1) * time.Minute)
	}

	for _, override := range overrides {
		override(comment)
	}

	return comment, f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		if parent == nil {
			return tx.Model(&models.Post{}).
				Where("id = ?", post.ID).
				UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error
		}
		return tx.Model(&models.Comment{}).
			Where("id = ?", parent.ID).
			UpdateColumn("replies_count", gorm.Expr("replies_count + 1")).Error
	})
}

// ReactToPost records a reaction of a random kind from the user onto the post.
func (f *Factory) ReactToPost(user *models.User, post *models.Post) error {
	kind := models.ReactionKinds[f.rand.Intn(len(models.ReactionKinds))]
	if post.ReactionCounts == nil {
		post.ReactionCounts = models.NewReactionCounts()
	}
	if post.UserReactions == nil {
		post.UserReactions = models.UserReactions{}
	}
	models.ToggleReaction(post.ReactionCounts, post.UserReactions, user.ID, kind)
	return f.db.Model(post).
		Select("reaction_counts", "user_reactions").
		Updates(models.Post{
			ReactionCounts: post.ReactionCounts,
			UserReactions:  post.UserReactions,
		}).Error
}
