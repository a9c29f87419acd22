package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"postboard/internal/auth"
	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var participantRoles = []string{
	"", "Captain", "Delegate", "Organizer", "Volunteer", "Soloist", "Coach", "President",
}

var rejectionReasons = []string{
	"Please add the date and time of the event.",
	"Photos need consent from everyone pictured.",
	"This duplicates an existing post.",
	"Description is too vague; tell us what happened.",
}

// Factory builds posts with realistic content and persists them.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db       *gorm.DB
	opts     Options
	faker    *gofakeit.Faker
	students []models.Identity
	adminID  string
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	identities := opts.Identities
	if len(identities) == 0 {
		identities = auth.DefaultIdentities()
	}

	f := &Factory{
		db:     db,
		opts:   opts,
		faker:  gofakeit.New(time.Now().UnixNano()),
		nextID: 1000,
	}
	for _, id := range identities {
		switch id.Role {
		case models.RoleStudent:
			f.students = append(f.students, id)
		case models.RoleAdmin:
			if f.adminID == "" {
				f.adminID = id.ID
			}
		}
	}
	return f
}

// BuildPost constructs a random post in a random moderation state without
// persisting it. Content always satisfies submission validation.
func (f *Factory) BuildPost(overrides ...func(*models.Post)) *models.Post {
	author := models.Identity{ID: "student-000", DisplayName: f.faker.Name()}
	if len(f.students) > 0 {
		author = f.students[f.faker.Number(0, len(f.students)-1)]
	}

	post := &models.Post{
		Title:              truncate(f.faker.Sentence(f.faker.Number(3, 7)), validation.MaxTitleLength),
		Description:        truncate(f.faker.Paragraph(1, f.faker.Number(1, 3), 12, " "), validation.MaxDescriptionLength),
		CategoryTags:       datatypes.JSONSlice[models.Category](f.categories()),
		TaggedParticipants: datatypes.JSONSlice[models.Participant](f.participants()),
		Images:             datatypes.JSONSlice[string](f.images()),
		AuthorID:           author.ID,
		AuthorName:         author.DisplayName,
		Status:             models.PostStatusPending,
		CreatedAt:          f.createdAt(),
	}

	// roughly half pending, a third approved, the rest rejected
	switch roll := f.faker.Number(1, 100); {
	case roll > 85:
		f.review(post, models.PostStatusRejected)
		reason := f.faker.RandomString(rejectionReasons)
		post.RejectionReason = &reason
	case roll > 50:
		f.review(post, models.PostStatusApproved)
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

func (f *Factory) review(post *models.Post, status models.PostStatus) {
	reviewedAt := post.CreatedAt.Add(time.Duration(f.faker.Number(1, 48)) * time.Hour)
	adminID := f.adminID
	post.Status = status
	post.ReviewedAt = &reviewedAt
	post.ReviewedByAdminID = &adminID
}

func (f *Factory) categories() []models.Category {
	n := f.faker.Number(1, 3)
	picked := make([]models.Category, 0, n)
	seen := make(map[models.Category]bool, n)
	for len(picked) < n {
		c := models.Categories[f.faker.Number(0, len(models.Categories)-1)]
		if !seen[c] {
			seen[c] = true
			picked = append(picked, c)
		}
	}
	return picked
}

func (f *Factory) participants() []models.Participant {
	n := f.faker.Number(0, 6)
	out := make([]models.Participant, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Participant{
			FullName: f.faker.FirstName() + " " + f.faker.LastName(),
			Role:     f.faker.RandomString(participantRoles),
		})
	}
	return out
}

func (f *Factory) images() []string {
	n := f.faker.Number(0, 3)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fmt.Sprintf("https://picsum.photos/seed/%s/1200/800", f.faker.UUID()))
	}
	return out
}

// createdAt spreads posts over the last MaxDays days.
func (f *Factory) createdAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.faker.Number(0, maxDays*24*60-1)) * time.Minute
	return time.Now().UTC().Add(-back)
}

// CreatePostsBatch persists posts in a single DB call.
func (f *Factory) CreatePostsBatch(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		middleware.Logger.Info("[dry-run] CreatePostsBatch (no DB write)", slog.Int("posts", len(posts)))
		return nil
	}
	return f.db.WithContext(ctx).CreateInBatches(posts, 100).Error
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
