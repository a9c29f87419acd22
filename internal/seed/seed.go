// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"postboard/internal/auth"
	"postboard/internal/middleware"
	"postboard/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	// NumPosts random posts are generated after the demo posts.
	NumPosts    int
	ShouldClean bool
	// DryRun builds everything but writes nothing.
	DryRun bool
	// MaxDays bounds how far back generated posts are dated.
	MaxDays int
	// Identities authors and reviewers are drawn from. Defaults to the
	// built-in registry.
	Identities []models.Identity
}

// Seed populates the database with the demo posts and opts.NumPosts random ones.
func Seed(ctx context.Context, db *gorm.DB, opts Options) error {
	log := middleware.Logger
	log.Info("Starting database seeding", slog.Int("random_posts", opts.NumPosts), slog.Bool("dry_run", opts.DryRun))

	if opts.ShouldClean && !opts.DryRun {
		if err := clearData(ctx, db); err != nil {
			return fmt.Errorf("clear posts: %w", err)
		}
		log.Info("Existing posts removed")
	}

	f := NewFactory(db, opts)

	demo := DemoPosts()
	batch := make([]*models.Post, 0, len(demo)+opts.NumPosts)
	for i := range demo {
		batch = append(batch, &demo[i])
	}
	for i := 0; i < opts.NumPosts; i++ {
		batch = append(batch, f.BuildPost())
	}

	if err := f.CreatePostsBatch(ctx, batch); err != nil {
		return fmt.Errorf("create posts: %w", err)
	}
	log.Info("Seeding complete", slog.Int("posts", len(batch)))
	return nil
}

func clearData(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Post{}).Error
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func ptr[T any](v T) *T { return &v }

// DemoPosts returns the three posts the board ships with: two approved and
// the Spring Concert announcement still waiting for review.
func DemoPosts() []models.Post {
	admin := defaultAdminID()
	return []models.Post{
		{
			Title:        "Model UN Conference Success",
			Description:  "Our ASM delegation represented Italy at the European Model UN conference in Geneva. Students debated topics ranging from climate change to international security.",
			CategoryTags: datatypes.JSONSlice[models.Category]{models.CategoryClub, models.CategoryAcademic},
			TaggedParticipants: datatypes.JSONSlice[models.Participant]{
				{FullName: "Marco Rossi", Role: "Head Delegate"},
				{FullName: "Emma Williams", Role: "Delegate"},
				{FullName: "Luca Ferrari", Role: "Delegate"},
			},
			Images:            datatypes.JSONSlice[string]{"https://picsum.photos/seed/mun-conference/1200/800"},
			AuthorID:          "student-001",
			AuthorName:        "Marco Rossi",
			Status:            models.PostStatusApproved,
			CreatedAt:         day("2024-01-15"),
			ReviewedAt:        ptr(day("2024-01-16")),
			ReviewedByAdminID: ptr(admin),
		},
		{
			Title:        "Spring Concert Announcement",
			Description:  "Join us for the annual Spring Concert featuring performances by the Orchestra, Choir, and Jazz Band. All families welcome!",
			CategoryTags: datatypes.JSONSlice[models.Category]{models.CategoryMusic, models.CategoryEvent},
			TaggedParticipants: datatypes.JSONSlice[models.Participant]{
				{FullName: "Sofia Chen", Role: "Orchestra Director"},
				{FullName: "James Miller", Role: "Choir Lead"},
			},
			Images:     datatypes.JSONSlice[string]{"https://picsum.photos/seed/spring-concert/1200/800"},
			AuthorID:   "student-002",
			AuthorName: "Sofia Chen",
			Status:     models.PostStatusPending,
			CreatedAt:  day("2024-01-20"),
		},
		{
			Title:        "Basketball Team Wins Championship",
			Description:  "Congratulations to our Varsity Basketball team for winning the ISST Championship! A historic victory for ASM athletics.",
			CategoryTags: datatypes.JSONSlice[models.Category]{models.CategorySports, models.CategoryEvent},
			TaggedParticipants: datatypes.JSONSlice[models.Participant]{
				{FullName: "Andrea Bianchi", Role: "Team Captain"},
				{FullName: "Michael Thompson", Role: "MVP"},
			},
			Images:            datatypes.JSONSlice[string]{"https://picsum.photos/seed/basketball-win/1200/800"},
			AuthorID:          "student-001",
			AuthorName:        "Marco Rossi",
			Status:            models.PostStatusApproved,
			CreatedAt:         day("2024-01-18"),
			ReviewedAt:        ptr(day("2024-01-19")),
			ReviewedByAdminID: ptr(admin),
		},
	}
}

func defaultAdminID() string {
	for _, id := range auth.DefaultIdentities() {
		if id.Role == models.RoleAdmin {
			return id.ID
		}
	}
	return ""
}
