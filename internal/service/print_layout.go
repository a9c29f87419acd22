package service

import (
	"context"
	"fmt"
	"strings"

	"postboard/internal/models"
)

// Orientation of a printed post.
type Orientation string

const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

const (
	SchoolName   = "American School of Milan"
	SchoolMotto  = "Curious Learners, Critical Thinkers, Global Citizens"
	PrintCaption = "Student Posts"
	PrintDate    = "January 2, 2006"

	// PortraitParticipantLimit is how many participants fit the portrait card.
	PortraitParticipantLimit = 4
)

// ParseOrientation defaults to landscape.
func ParseOrientation(raw string) (Orientation, error) {
	switch Orientation(strings.ToLower(strings.TrimSpace(raw))) {
	case "", OrientationLandscape:
		return OrientationLandscape, nil
	case OrientationPortrait:
		return OrientationPortrait, nil
	}
	return "", models.NewValidationError("orientation must be portrait or landscape")
}

type PrintHeader struct {
	School  string `json:"school"`
	Caption string `json:"caption"`
	Date    string `json:"date"`
}

type PrintFooter struct {
	PostedBy string `json:"posted_by"`
	Motto    string `json:"motto"`
}

// PrintLayout is everything a print view needs to render one post.
type PrintLayout struct {
	PostID           uint                 `json:"post_id"`
	Orientation      Orientation          `json:"orientation"`
	AspectRatio      string               `json:"aspect_ratio"`
	Header           PrintHeader          `json:"header"`
	Title            string               `json:"title"`
	Description      string               `json:"description"`
	Images           []string             `json:"images"`
	Categories       []models.Category    `json:"categories"`
	Participants     []models.Participant `json:"participants"`
	MoreParticipants int                  `json:"more_participants"`
	MoreLabel        string               `json:"more_label,omitempty"`
	Footer           PrintFooter          `json:"footer"`
}

// BuildPrintLayout arranges post for the given orientation. Portrait shows
// names only and truncates the participant list; landscape shows everyone
// with roles.
func BuildPrintLayout(post *models.Post, orientation Orientation) PrintLayout {
	layout := PrintLayout{
		PostID:      post.ID,
		Orientation: orientation,
		AspectRatio: "16:9",
		Header: PrintHeader{
			School:  SchoolName,
			Caption: PrintCaption,
			Date:    post.CreatedAt.Format(PrintDate),
		},
		Title:        post.Title,
		Description:  post.Description,
		Images:       append([]string{}, post.Images...),
		Categories:   append([]models.Category{}, post.CategoryTags...),
		Participants: append([]models.Participant{}, post.TaggedParticipants...),
		Footer: PrintFooter{
			PostedBy: post.AuthorName,
			Motto:    SchoolMotto,
		},
	}

	if orientation != OrientationPortrait {
		return layout
	}

	layout.AspectRatio = "9:16"
	names := make([]models.Participant, 0, PortraitParticipantLimit)
	for i, p := range post.TaggedParticipants {
		if i == PortraitParticipantLimit {
			break
		}
		names = append(names, models.Participant{FullName: p.FullName})
	}
	layout.Participants = names
	if extra := len(post.TaggedParticipants) - PortraitParticipantLimit; extra > 0 {
		layout.MoreParticipants = extra
		layout.MoreLabel = fmt.Sprintf("+%d more", extra)
	}
	return layout
}

// PrintPreview loads a post visible to viewer and lays it out.
func (s *PostService) PrintPreview(ctx context.Context, id uint, viewer *models.Identity, orientation Orientation) (*PrintLayout, error) {
	post, err := s.GetPost(ctx, id, viewer)
	if err != nil {
		return nil, err
	}
	layout := BuildPrintLayout(post, orientation)
	return &layout, nil
}
