// Command simulate drives a scripted client session against the local
// database: sign in, post, comment, react, and watch the thread refresh.
// Useful for exercising the full stack without a browser.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"ripple/internal/config"
	"ripple/internal/database"
	"ripple/internal/identity"
	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/reactions"
	"ripple/internal/realtime"
	"ripple/internal/repository"
	"ripple/internal/seed"
	"ripple/internal/service"
	"ripple/internal/session"
)

func main() {
	password := flag.String("password", "Simulate-Pass-123!", "password for generated accounts")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	logger := observability.GlobalLogger
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	broker := realtime.NewBroker(nil)
	ledger := reactions.NewLedger(db)
	userService := service.NewUserService(userRepo)
	postService := service.NewPostService(postRepo, userRepo, ledger, broker)
	commentService := service.NewCommentService(commentRepo, userRepo, ledger, broker)
	sync := realtime.NewCommentSynchronizer(commentRepo, broker, userService, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	provider := identity.NewProvider(userRepo)
	sess := session.NewFacade(provider, logger)
	if err := sess.Init(ctx); err != nil {
		log.Fatalf("Session init failed: %v", err)
	}
	defer sess.Close()
	log.Printf("Session settled, logged in: %v", sess.LoggedIn())

	// A login with bad credentials reports failure without an error.
	if result, err := sess.Login(ctx, "nobody@example.com", "wrong"); err != nil {
		log.Fatalf("Login attempt failed unexpectedly: %v", err)
	} else {
		log.Printf("Bad credentials: success=%v message=%q", result.Success, result.Message)
	}

	f := seed.NewFactory(db, seed.Options{})
	alice, err := provider.SignUp(ctx, "alice.sim@example.com", *password, "Alice Simone")
	if err != nil {
		// Re-runs hit the existing account; sign in instead.
		result, loginErr := sess.Login(ctx, "alice.sim@example.com", *password)
		if loginErr != nil || !result.Success {
			log.Fatalf("Sign up and login both failed: %v / %+v", err, result)
		}
		alice = sess.User()
	}
	log.Printf("Signed in as %s", alice.FullDisplayName())

	bob, err := f.CreateUser(func(u *models.User) {
		u.DisplayName = "Bob Waters"
	})
	if err != nil {
		log.Fatalf("Failed to create second user: %v", err)
	}

	post, err := postService.CreatePost(ctx, service.CreatePostInput{
		UserID:  alice.ID,
		Content: "First ripple in the pond.",
	})
	if err != nil {
		log.Fatalf("Failed to create post: %v", err)
	}

	sub, err := sync.SubscribeTopLevel(ctx, post.ID)
	if err != nil {
		log.Fatalf("Failed to subscribe to thread: %v", err)
	}
	defer sub.Cancel()

	comment, err := commentService.AddComment(ctx, service.AddCommentInput{
		UserID:  bob.ID,
		PostID:  post.ID,
		Content: "Nice one!",
	})
	if err != nil {
		log.Fatalf("Failed to comment: %v", err)
	}
	if _, err := commentService.AddComment(ctx, service.AddCommentInput{
		UserID:   alice.ID,
		PostID:   post.ID,
		ParentID: &comment.ID,
		Content:  "Thanks Bob.",
	}); err != nil {
		log.Fatalf("Failed to reply: %v", err)
	}

	if _, err := postService.React(ctx, bob.ID, post.ID, models.ReactionLike); err != nil {
		log.Fatalf("Failed to react: %v", err)
	}

	// Drain a couple of snapshots to show the thread converging.
	deadline := time.After(3 * time.Second)
	for {
		select {
		case snapshot := <-sub.Updates:
			log.Printf("Thread snapshot: %d top-level comments", len(snapshot))
		case <-deadline:
			final, err := sync.TopLevelSnapshot(ctx, post.ID)
			if err != nil {
				log.Fatalf("Final snapshot failed: %v", err)
			}
			updated, err := postService.GetPost(ctx, post.ID)
			if err != nil {
				log.Fatalf("Failed to reload post: %v", err)
			}
			log.Printf("Final state: comments_count=%d likes=%d thread=%d",
				updated.CommentsCount, updated.ReactionCounts[models.ReactionLike], len(final))

			out := sess.Logout(ctx)
			log.Printf("Logged out (success=%v), logged in: %v", out.Success, sess.LoggedIn())
			return
		}
	}
}
