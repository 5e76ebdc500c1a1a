// Command seed fills the community tables with demo data.
package main

import (
	"context"
	"flag"
	"log"

	"moodmate/internal/config"
	"moodmate/internal/database"
	"moodmate/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of profiles to create")
	numVibes := flag.Int("vibes", 80, "Number of vibes to share")
	maxComments := flag.Int("comments", 8, "Maximum comments per vibe")
	maxLikes := flag.Int("likes", 10, "Maximum likes per vibe")
	maxDays := flag.Int("days", 90, "Spread created_at over this many days")
	shouldClean := flag.Bool("clean", true, "Clean community tables before seeding")
	dryRun := flag.Bool("dry-run", false, "Build everything without writing")
	randSeed := flag.Int64("seed", 0, "Random seed (0 picks one)")
	flag.Parse()

	log.Printf("Target: %d profiles, %d vibes, clean=%v dry-run=%v", *numUsers, *numVibes, *shouldClean, *dryRun)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	opts := seed.Options{
		NumUsers:     *numUsers,
		NumVibes:     *numVibes,
		MaxComments:  *maxComments,
		MaxLikes:     *maxLikes,
		MaxDays:      *maxDays,
		MonthlyQuota: cfg.VibeMonthlyQuota,
		ShouldClean:  *shouldClean,
		DryRun:       *dryRun,
		RandSeed:     *randSeed,
	}

	var summary *seed.Summary
	if *dryRun {
		summary, err = seed.Seed(ctx, nil, opts)
	} else {
		db, cerr := database.Connect(cfg)
		if cerr != nil {
			log.Fatalf("Failed to connect to database: %v", cerr)
		}
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			log.Fatalf("Failed to apply schema: %v", err)
		}
		summary, err = seed.Seed(ctx, db, opts)
	}
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Done: %d profiles, %d vibes, %d comments, %d vibe likes, %d comment likes",
		summary.Profiles, summary.Vibes, summary.Comments, summary.PlaylistLikes, summary.CommentLikes)
}
