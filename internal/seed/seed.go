// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"

	"ripple/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	SkipBcrypt  bool
	MaxDays     int
}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	f := NewFactory(db, opts)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create users: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("✓ %d test users created", len(users))

	if len(users) == 0 {
		return nil
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[i%len(users)]
		post := f.BuildPost(author)
		posts = append(posts, post)
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("✓ %d posts created", len(posts))

	// Threads: a couple of top-level comments per post, with some replies.
	commentCount := 0
	for _, post := range posts {
		for i := 0; i < f.rand.Intn(3)+1; i++ {
			commenter := users[f.rand.Intn(len(users))]
			comment, err := f.CreateComment(commenter, post, nil)
			if err != nil {
				return fmt.Errorf("failed to create comments: %w", err)
			}
			commentCount++

			for j := 0; j < f.rand.Intn(2); j++ {
				replier := users[f.rand.Intn(len(users))]
				if _, err := f.CreateComment(replier, post, comment); err != nil {
					return fmt.Errorf("failed to create replies: %w", err)
				}
				commentCount++
			}
		}
	}
	log.Printf("✓ %d comments created", commentCount)

	// Reactions: a sampling of users reacting to each post.
	reactionCount := 0
	for _, post := range posts {
		for _, user := range users {
			if f.rand.Intn(3) == 0 {
				if err := f.ReactToPost(user, post); err != nil {
					return fmt.Errorf("failed to create reactions: %w", err)
				}
				reactionCount++
			}
		}
	}
	log.Printf("✓ %d reactions recorded", reactionCount)

	log.Println("🌱 Seeding complete")
	return nil
}

// clearData removes seeded rows so repeated runs start clean.
func clearData(db *gorm.DB) error {
	tables := []string{"comments", "posts", "users"}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}
