// Command seed populates the board with demo and generated posts.
package main

import (
	"context"
	"flag"
	"log"

	"postboard/internal/config"
	"postboard/internal/database"
	"postboard/internal/seed"
)

func main() {
	numPosts := flag.Int("n", 20, "Number of random posts to generate in addition to the demo posts")
	shouldClean := flag.Bool("clean", false, "Delete all posts before seeding")
	dryRun := flag.Bool("dry-run", false, "Build posts without writing them")
	maxDays := flag.Int("days", 90, "Spread generated posts over this many past days")
	flag.Parse()

	log.Println("🌱 Post Board Seeder")
	log.Printf("Target: %d random posts, clean=%v, dry-run=%v\n", *numPosts, *shouldClean, *dryRun)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = seed.Seed(context.Background(), db, seed.Options{
		NumPosts:    *numPosts,
		ShouldClean: *shouldClean,
		DryRun:      *dryRun,
		MaxDays:     *maxDays,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! The board is populated with demo posts.")
}
