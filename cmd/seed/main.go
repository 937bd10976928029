// Command seed populates the database with demo users, posts, threads and
// reactions for local development.
package main

import (
	"flag"
	"log"

	"ripple/internal/config"
	"ripple/internal/database"
	"ripple/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 10, "number of users to create")
	numPosts := flag.Int("posts", 30, "number of posts to create")
	clean := flag.Bool("clean", false, "delete existing data before seeding")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "store plaintext passwords (dev fast mode)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		ShouldClean: *clean,
		SkipBcrypt:  *skipBcrypt,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
