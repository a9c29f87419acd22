package service

import (
	"context"
	"testing"
	"time"

	"postboard/internal/models"
	"postboard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func participants(n int) []models.Participant {
	names := []string{"Marco Rossi", "Sofia Chen", "Luca Bianchi", "Emma Wilson", "Aiko Tanaka", "Noah Smith"}
	out := make([]models.Participant, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Participant{FullName: names[i%len(names)], Role: "Player"})
	}
	return out
}

func TestBuildPrintLayout(t *testing.T) {
	t.Parallel()

	post := &models.Post{
		ID:                 3,
		Title:              "Basketball Team Wins Championship",
		Description:        "A great season",
		CategoryTags:       []models.Category{models.CategorySports},
		TaggedParticipants: participants(6),
		AuthorName:         "Marco Rossi",
		CreatedAt:          time.Date(2024, time.March, 5, 14, 0, 0, 0, time.UTC),
	}

	t.Run("portrait truncates participants", func(t *testing.T) {
		layout := BuildPrintLayout(post, OrientationPortrait)
		assert.Equal(t, "9:16", layout.AspectRatio)
		assert.Equal(t, "March 5, 2024", layout.Header.Date)
		assert.Equal(t, SchoolName, layout.Header.School)
		require.Len(t, layout.Participants, PortraitParticipantLimit)
		assert.Empty(t, layout.Participants[0].Role)
		assert.Equal(t, 2, layout.MoreParticipants)
		assert.Equal(t, "+2 more", layout.MoreLabel)
		assert.Equal(t, "Marco Rossi", layout.Footer.PostedBy)
	})

	t.Run("landscape lists everyone with roles", func(t *testing.T) {
		layout := BuildPrintLayout(post, OrientationLandscape)
		assert.Equal(t, "16:9", layout.AspectRatio)
		require.Len(t, layout.Participants, 6)
		assert.Equal(t, "Player", layout.Participants[5].Role)
		assert.Zero(t, layout.MoreParticipants)
		assert.Empty(t, layout.MoreLabel)
	})

	t.Run("portrait with few participants has no overflow", func(t *testing.T) {
		small := *post
		small.TaggedParticipants = participants(4)
		layout := BuildPrintLayout(&small, OrientationPortrait)
		assert.Len(t, layout.Participants, 4)
		assert.Zero(t, layout.MoreParticipants)
	})
}

func TestParseOrientation(t *testing.T) {
	t.Parallel()

	o, err := ParseOrientation("")
	require.NoError(t, err)
	assert.Equal(t, OrientationLandscape, o)

	o, err = ParseOrientation(" Portrait ")
	require.NoError(t, err)
	assert.Equal(t, OrientationPortrait, o)

	_, err = ParseOrientation("diagonal")
	assertValidationError(t, err)
}

func TestPrintPreviewRequiresApprovalForNonAdmins(t *testing.T) {
	t.Parallel()

	svc, _ := newTestPostService(t)
	ctx := context.Background()

	post, err := svc.Submit(ctx, testutil.Draft("Spring Concert Announcement", models.CategoryMusic), testutil.Sofia)
	require.NoError(t, err)

	_, err = svc.PrintPreview(ctx, post.ID, testutil.Sofia, OrientationLandscape)
	assertAppErrorCode(t, err, models.CodeNotFound)

	layout, err := svc.PrintPreview(ctx, post.ID, testutil.Admin, OrientationPortrait)
	require.NoError(t, err)
	assert.Equal(t, "Spring Concert Announcement", layout.Title)

	_, err = svc.Decide(ctx, post.ID, models.DecisionApprove, testutil.Admin, "")
	require.NoError(t, err)
	_, err = svc.PrintPreview(ctx, post.ID, nil, OrientationLandscape)
	assert.NoError(t, err)
}
