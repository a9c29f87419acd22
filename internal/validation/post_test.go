package validation

import (
	"strings"
	"testing"

	"postboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDraft() models.PostDraft {
	return models.PostDraft{
		Title:        "Spring Concert",
		Description:  "Join us for the spring concert in the main hall.",
		CategoryTags: []models.Category{models.CategoryMusic},
	}
}

func assertValidationError(t *testing.T, err error, contains string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	if contains != "" {
		assert.Contains(t, appErr.Message, contains)
	}
}

func TestValidatePostDraft(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*models.PostDraft)
		contains string
	}{
		{"valid", func(*models.PostDraft) {}, ""},
		{"empty title", func(d *models.PostDraft) { d.Title = "   " }, "title"},
		{"empty description", func(d *models.PostDraft) { d.Description = "" }, "description"},
		{"no tags", func(d *models.PostDraft) { d.CategoryTags = nil }, "category_tags"},
		{"unknown tag", func(d *models.PostDraft) { d.CategoryTags = []models.Category{"Chess"} }, "Chess"},
		{"title at limit", func(d *models.PostDraft) { d.Title = strings.Repeat("a", MaxTitleLength) }, ""},
		{"title too long", func(d *models.PostDraft) { d.Title = strings.Repeat("a", MaxTitleLength+1) }, "title"},
		{"multibyte title at limit", func(d *models.PostDraft) { d.Title = strings.Repeat("é", MaxTitleLength) }, ""},
		{"description at limit", func(d *models.PostDraft) { d.Description = strings.Repeat("b", MaxDescriptionLength) }, ""},
		{"description too long", func(d *models.PostDraft) { d.Description = strings.Repeat("b", MaxDescriptionLength+1) }, "description"},
		{"participant without name", func(d *models.PostDraft) {
			d.TaggedParticipants = []models.Participant{{FullName: " ", Role: "Captain"}}
		}, "participant 1"},
		{"participant without role", func(d *models.PostDraft) {
			d.TaggedParticipants = []models.Participant{{FullName: "Luca Bianchi"}}
		}, ""},
		{"url image", func(d *models.PostDraft) { d.Images = []string{"https://cdn.example.com/a.jpg"} }, ""},
		{"data image", func(d *models.PostDraft) { d.Images = []string{"data:image/png;base64,iVBORw0KGgo="} }, ""},
		{"bad image", func(d *models.PostDraft) { d.Images = []string{"ftp://example.com/a.jpg"} }, "image 1"},
		{"too many images", func(d *models.PostDraft) {
			d.Images = make([]string, MaxImages+1)
			for i := range d.Images {
				d.Images[i] = "https://cdn.example.com/a.jpg"
			}
		}, "images"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)
			d = NormalizeDraft(d)
			err := ValidatePostDraft(&d)
			if tt.contains == "" {
				assert.NoError(t, err)
				return
			}
			assertValidationError(t, err, tt.contains)
		})
	}
}

func TestNormalizeDraftDeduplicatesTags(t *testing.T) {
	t.Parallel()

	d := NormalizeDraft(models.PostDraft{
		Title:        "  Game night ",
		CategoryTags: []models.Category{models.CategorySports, models.CategoryEvent, models.CategorySports, " Event"},
		TaggedParticipants: []models.Participant{
			{FullName: " Sofia Chen ", Role: " Organizer "},
		},
	})

	assert.Equal(t, "Game night", d.Title)
	assert.Equal(t, []models.Category{models.CategorySports, models.CategoryEvent}, d.CategoryTags)
	assert.Equal(t, models.Participant{FullName: "Sofia Chen", Role: "Organizer"}, d.TaggedParticipants[0])
}

func TestValidateRejectionReason(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateRejectionReason("Please add a photo"))
	assertValidationError(t, ValidateRejectionReason(""), "rejection reason")
	assertValidationError(t, ValidateRejectionReason("   "), "rejection reason")
	assertValidationError(t, ValidateRejectionReason(strings.Repeat("x", MaxReasonLength+1)), "rejection reason")
}

func TestValidateImageReference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ref string
		ok  bool
	}{
		{"https://example.com/a.png", true},
		{"http://example.com/a.png", true},
		{"https://", false},
		{"data:image/webp;base64,AAAA", true},
		{"data:text/plain;base64,AAAA", false},
		{"data:image/png,raw", false},
		{"data:image/png;base64", false},
		{"/relative/path.png", false},
	}
	for _, tt := range tests {
		err := ValidateImageReference(tt.ref)
		if tt.ok {
			assert.NoError(t, err, tt.ref)
		} else {
			assert.Error(t, err, tt.ref)
		}
	}
}
