package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"postboard/internal/auth"
	"postboard/internal/cache"
	"postboard/internal/models"
	"postboard/internal/observability"
	"postboard/internal/repository"
	"postboard/internal/validation"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Moderation event types.
const (
	EventPostSubmitted = "post_submitted"
	EventPostReviewed  = "post_reviewed"
)

// EventPublisher delivers moderation events to interested admins.
type EventPublisher interface {
	PublishModerationEvent(ctx context.Context, eventType string, payload interface{}) error
}

// PostService owns the post lifecycle: submission, one-shot moderation and
// the derived views. Views are always read back from storage.
type PostService struct {
	repo    repository.PostRepository
	cache   *cache.Store
	images  *ImageService
	events  EventPublisher
	feedTTL time.Duration
}

func NewPostService(
	repo repository.PostRepository,
	store *cache.Store,
	images *ImageService,
	events EventPublisher,
	feedTTL time.Duration,
) *PostService {
	if feedTTL <= 0 {
		feedTTL = cache.DefaultFeedTTL
	}
	return &PostService{
		repo:    repo,
		cache:   store,
		images:  images,
		events:  events,
		feedTTL: feedTTL,
	}
}

// Submit validates a draft and stores it as a pending post by author.
func (s *PostService) Submit(ctx context.Context, draft models.PostDraft, author *models.Identity) (*models.Post, error) {
	if !auth.Can(auth.RoleOf(author), auth.ActionSubmit) {
		return nil, models.NewAuthorizationError("Only students can submit posts")
	}

	d := validation.NormalizeDraft(draft)
	if err := validation.ValidatePostDraft(&d); err != nil {
		return nil, err
	}

	images := d.Images
	if s.images != nil {
		normalized, err := s.images.NormalizeAll(d.Images)
		if err != nil {
			return nil, err
		}
		images = normalized
	}

	post := &models.Post{
		Title:              d.Title,
		Description:        d.Description,
		CategoryTags:       datatypes.JSONSlice[models.Category](d.CategoryTags),
		TaggedParticipants: datatypes.JSONSlice[models.Participant]{},
		Images:             datatypes.JSONSlice[string]{},
		AuthorID:           author.ID,
		AuthorName:         author.DisplayName,
	}
	post.TaggedParticipants = append(post.TaggedParticipants, d.TaggedParticipants...)
	post.Images = append(post.Images, images...)

	if err := s.repo.Insert(ctx, post); err != nil {
		return nil, models.NewStorageError(err)
	}

	observability.PostsSubmitted.Inc()
	s.invalidateFeed(ctx)
	s.publish(ctx, EventPostSubmitted, post)
	return post, nil
}

// Decide applies an admin decision to a pending post. A post is decided at
// most once; later attempts fail with a conflict and change nothing.
func (s *PostService) Decide(ctx context.Context, postID uint, decision models.Decision, admin *models.Identity, reason string) (post *models.Post, err error) {
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = strings.ToLower(models.ErrorCode(err))
		}
		label := string(decision)
		if _, known := decision.Status(); !known {
			label = "invalid"
		}
		observability.PostDecisions.WithLabelValues(label, outcome).Inc()
	}()

	if !auth.Can(auth.RoleOf(admin), auth.ActionDecide) {
		return nil, models.NewAuthorizationError("Only admins can review posts")
	}
	status, ok := decision.Status()
	if !ok {
		return nil, models.NewValidationError("decision must be approve or reject")
	}

	var storedReason *string
	if decision == models.DecisionReject {
		if err := validation.ValidateRejectionReason(reason); err != nil {
			return nil, err
		}
		storedReason = &reason
	}

	post, err = s.repo.UpdateStatus(ctx, postID, status, admin.ID, storedReason)
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, models.NewNotFoundError("Post", postID)
	case errors.Is(err, repository.ErrNotPending):
		return nil, models.NewConflictError("Post has already been reviewed")
	default:
		return nil, models.NewStorageError(err)
	}

	s.invalidateFeed(ctx)
	s.publish(ctx, EventPostReviewed, post)
	return post, nil
}

// PendingPosts returns posts awaiting review in submission order.
func (s *PostService) PendingPosts(ctx context.Context) ([]models.Post, error) {
	return s.list(ctx, repository.ListFilter{Status: models.PostStatusPending, OldestFirst: true})
}

// ApprovedPosts returns the public feed, newest first. It is served from
// the feed cache when one is configured.
func (s *PostService) ApprovedPosts(ctx context.Context) ([]models.Post, error) {
	posts, result, err := cache.Aside(ctx, s.cache, cache.ApprovedFeedKey, s.feedTTL, func(ctx context.Context) ([]models.Post, error) {
		return s.repo.List(ctx, repository.ListFilter{Status: models.PostStatusApproved})
	})
	if s.cache.Enabled() {
		observability.FeedCacheLookups.WithLabelValues(string(result)).Inc()
	}
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return posts, nil
}

// RejectedPosts returns rejected posts with their reasons, newest first.
func (s *PostService) RejectedPosts(ctx context.Context) ([]models.Post, error) {
	return s.list(ctx, repository.ListFilter{Status: models.PostStatusRejected})
}

// PostsByAuthor matches the author display name exactly.
func (s *PostService) PostsByAuthor(ctx context.Context, authorName string) ([]models.Post, error) {
	return s.list(ctx, repository.ListFilter{AuthorName: authorName})
}

// ApprovedPostsByAuthorID returns the identity's published posts. Pending and
// rejected posts stay in the moderation views.
func (s *PostService) ApprovedPostsByAuthorID(ctx context.Context, authorID string) ([]models.Post, error) {
	return s.list(ctx, repository.ListFilter{Status: models.PostStatusApproved, AuthorID: authorID})
}

// PostsByStatus backs the admin listing. An empty status lists everything.
func (s *PostService) PostsByStatus(ctx context.Context, status models.PostStatus) ([]models.Post, error) {
	switch status {
	case models.PostStatusPending:
		return s.PendingPosts(ctx)
	case models.PostStatusApproved:
		return s.list(ctx, repository.ListFilter{Status: models.PostStatusApproved})
	case models.PostStatusRejected:
		return s.RejectedPosts(ctx)
	case "":
		return s.list(ctx, repository.ListFilter{})
	default:
		return nil, models.NewValidationError("status must be pending, approved or rejected")
	}
}

// GetPost returns a single post if viewer may see it. Admins see all posts,
// everyone else sees approved posts only. Anything else reads as not found.
func (s *PostService) GetPost(ctx context.Context, id uint, viewer *models.Identity) (*models.Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewStorageError(err)
	}
	if !CanView(viewer, post) {
		return nil, models.NewNotFoundError("Post", id)
	}
	return post, nil
}

// CanView reports whether viewer may read post.
func CanView(viewer *models.Identity, post *models.Post) bool {
	role := auth.RoleOf(viewer)
	if auth.Can(role, auth.ActionViewModeration) {
		return true
	}
	return post.Status == models.PostStatusApproved && auth.Can(role, auth.ActionViewApproved)
}

// Counts returns the number of posts in each state.
func (s *PostService) Counts(ctx context.Context) (models.StatusCounts, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return counts, models.NewStorageError(err)
	}
	return counts, nil
}

func (s *PostService) list(ctx context.Context, filter repository.ListFilter) ([]models.Post, error) {
	posts, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return posts, nil
}

// invalidateFeed drops the cached feed. A failure only delays freshness
// until the TTL expires.
func (s *PostService) invalidateFeed(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, cache.ApprovedFeedKey); err != nil {
		observability.GlobalLogger.WarnContext(ctx, "feed cache invalidation failed", slog.String("error", err.Error()))
	}
}

func (s *PostService) publish(ctx context.Context, eventType string, post *models.Post) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishModerationEvent(ctx, eventType, post); err != nil {
		observability.GlobalLogger.WarnContext(ctx, "moderation event publish failed",
			slog.String("event_type", eventType),
			slog.Uint64("post_id", uint64(post.ID)),
			slog.String("error", err.Error()),
		)
	}
}
