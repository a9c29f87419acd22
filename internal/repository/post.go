// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"postboard/internal/models"
	"postboard/internal/observability"

	"gorm.io/gorm"
)

// ErrNotPending is returned by UpdateStatus when the post exists but was already decided.
var ErrNotPending = errors.New("post is not pending")

// ListFilter narrows List. Zero values mean "no constraint".
type ListFilter struct {
	Status      models.PostStatus
	AuthorName  string
	AuthorID    string
	OldestFirst bool
}

// PostRepository is the storage collaborator of the post lifecycle.
type PostRepository interface {
	// List returns matching posts, newest first unless OldestFirst is set.
	List(ctx context.Context, filter ListFilter) ([]models.Post, error)
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	// Insert stores a new pending post; storage assigns ID and CreatedAt.
	Insert(ctx context.Context, post *models.Post) error
	// UpdateStatus moves a pending post to status. It returns
	// gorm.ErrRecordNotFound for unknown ids and ErrNotPending when the post
	// was already decided; in both cases nothing is written.
	UpdateStatus(ctx context.Context, id uint, status models.PostStatus, reviewerID string, reason *string) (*models.Post, error)
	CountByStatus(ctx context.Context) (models.StatusCounts, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

func (r *postRepository) List(ctx context.Context, filter ListFilter) (posts []models.Post, err error) {
	ctx, done := track(ctx, "posts", "list")
	defer func() { done(err) }()

	q := r.db.WithContext(ctx).Model(&models.Post{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.AuthorName != "" {
		q = q.Where("author_name = ?", filter.AuthorName)
	}
	if filter.AuthorID != "" {
		q = q.Where("author_id = ?", filter.AuthorID)
	}
	if filter.OldestFirst {
		q = q.Order("created_at ASC").Order("id ASC")
	} else {
		q = q.Order("created_at DESC").Order("id DESC")
	}

	posts = []models.Post{}
	if err = q.Find(&posts).Error; err != nil {
		r.log.LogError(ctx, err, "list")
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (post *models.Post, err error) {
	ctx, done := track(ctx, "posts", "get")
	defer func() { done(err) }()

	var p models.Post
	if err = r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) Insert(ctx context.Context, post *models.Post) (err error) {
	ctx, done := track(ctx, "posts", "insert")
	defer func() { done(err) }()

	post.ID = 0
	post.Status = models.PostStatusPending
	post.CreatedAt = time.Time{}
	post.ReviewedAt = nil
	post.ReviewedByAdminID = nil
	post.RejectionReason = nil

	if err = r.db.WithContext(ctx).Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "insert")
		return err
	}
	r.log.LogCreate(ctx, map[string]interface{}{"post_id": post.ID, "author_id": post.AuthorID})
	return nil
}

func (r *postRepository) UpdateStatus(ctx context.Context, id uint, status models.PostStatus, reviewerID string, reason *string) (updated *models.Post, err error) {
	ctx, done := track(ctx, "posts", "update_status")
	defer func() { done(err) }()

	var post models.Post
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).
			Where("id = ? AND status = ?", id, models.PostStatusPending).
			Updates(map[string]interface{}{
				"status":               status,
				"reviewed_at":          time.Now().UTC(),
				"reviewed_by_admin_id": reviewerID,
				"rejection_reason":     reason,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var current models.Post
			if err := tx.Select("id", "status").First(&current, id).Error; err != nil {
				return err
			}
			return ErrNotPending
		}
		return tx.First(&post, id).Error
	})
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, ErrNotPending) {
			r.log.LogError(ctx, err, "update_status")
		}
		return nil, err
	}

	r.log.LogUpdate(ctx, map[string]interface{}{"post_id": id, "status": status, "reviewer_id": reviewerID})
	return &post, nil
}

func (r *postRepository) CountByStatus(ctx context.Context) (counts models.StatusCounts, err error) {
	ctx, done := track(ctx, "posts", "count")
	defer func() { done(err) }()

	var rows []struct {
		Status models.PostStatus
		Total  int64
	}
	if err = r.db.WithContext(ctx).Model(&models.Post{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return counts, err
	}
	for _, row := range rows {
		switch row.Status {
		case models.PostStatusPending:
			counts.Pending = row.Total
		case models.PostStatusApproved:
			counts.Approved = row.Total
		case models.PostStatusRejected:
			counts.Rejected = row.Total
		}
	}
	return counts, nil
}
