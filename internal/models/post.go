package models

import (
	"time"

	"gorm.io/datatypes"
)

// PostStatus defines the moderation states of a post.
type PostStatus string

const (
	// PostStatusPending indicates the post is awaiting an admin decision.
	PostStatusPending PostStatus = "pending"
	// PostStatusApproved indicates the post is published on the feed.
	PostStatusApproved PostStatus = "approved"
	// PostStatusRejected indicates the post was turned down.
	PostStatusRejected PostStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusPending, PostStatusApproved, PostStatusRejected:
		return true
	}
	return false
}

// Decision is the admin action that moves a post out of pending.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Status returns the terminal status a decision leads to.
func (d Decision) Status() (PostStatus, bool) {
	switch d {
	case DecisionApprove:
		return PostStatusApproved, true
	case DecisionReject:
		return PostStatusRejected, true
	}
	return "", false
}

// Participant is a person tagged on a post.
type Participant struct {
	FullName string `json:"full_name"`
	Role     string `json:"role,omitempty"`
}

// Post is a student-authored submission subject to moderation.
type Post struct {
	ID                 uint                             `gorm:"primaryKey" json:"id"`
	Title              string                           `gorm:"size:100;not null" json:"title"`
	Description        string                           `gorm:"type:text;not null" json:"description"`
	CategoryTags       datatypes.JSONSlice[Category]    `gorm:"not null" json:"category_tags"`
	TaggedParticipants datatypes.JSONSlice[Participant] `json:"tagged_participants"`
	Images             datatypes.JSONSlice[string]      `json:"images"`
	AuthorID           string                           `gorm:"size:64;not null;index" json:"author_id"`
	AuthorName         string                           `gorm:"size:120;not null;index" json:"author_name"`
	Status             PostStatus                       `gorm:"type:varchar(20);not null;default:'pending';index:idx_posts_status_created,priority:1" json:"status"`
	CreatedAt          time.Time                        `gorm:"index:idx_posts_status_created,priority:2" json:"created_at"`
	ReviewedAt         *time.Time                       `json:"reviewed_at,omitempty"`
	ReviewedByAdminID  *string                          `gorm:"size:64" json:"reviewed_by_admin_id,omitempty"`
	RejectionReason    *string                          `gorm:"type:text" json:"rejection_reason,omitempty"`
}

// HasTag reports whether the post carries any of the given categories.
func (p *Post) HasTag(tags ...Category) bool {
	for _, want := range tags {
		for _, have := range p.CategoryTags {
			if have == want {
				return true
			}
		}
	}
	return false
}

// PostDraft is the student-supplied content of a new post.
type PostDraft struct {
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	CategoryTags       []Category    `json:"category_tags"`
	TaggedParticipants []Participant `json:"tagged_participants"`
	Images             []string      `json:"images"`
}

// StatusCounts is the number of posts in each moderation state.
type StatusCounts struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}
