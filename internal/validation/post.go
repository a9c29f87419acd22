// Package validation checks user-supplied post content at the submission boundary.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"postboard/internal/models"

	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
	MaxReasonLength      = 500
	MaxParticipants      = 50
	MaxParticipantName   = 120
	MaxImages            = 10
)

// NormalizeDraft trims text fields, drops duplicate tags (keeping first
// occurrence order) and trims participant entries.
func NormalizeDraft(d models.PostDraft) models.PostDraft {
	out := models.PostDraft{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
	}

	seen := make(map[models.Category]struct{}, len(d.CategoryTags))
	for _, tag := range d.CategoryTags {
		tag = models.Category(strings.TrimSpace(string(tag)))
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out.CategoryTags = append(out.CategoryTags, tag)
	}

	for _, p := range d.TaggedParticipants {
		out.TaggedParticipants = append(out.TaggedParticipants, models.Participant{
			FullName: strings.TrimSpace(p.FullName),
			Role:     strings.TrimSpace(p.Role),
		})
	}

	for _, img := range d.Images {
		out.Images = append(out.Images, strings.TrimSpace(img))
	}
	return out
}

// ValidatePostDraft checks a normalized draft. Failures come back as a
// models.AppError with code VALIDATION_ERROR.
func ValidatePostDraft(d *models.PostDraft) error {
	err := validation.ValidateStruct(d,
		validation.Field(&d.Title, validation.Required, validation.RuneLength(1, MaxTitleLength)),
		validation.Field(&d.Description, validation.Required, validation.RuneLength(1, MaxDescriptionLength)),
		validation.Field(&d.CategoryTags, validation.Required, validation.By(knownCategories)),
		validation.Field(&d.TaggedParticipants, validation.Length(0, MaxParticipants), validation.By(namedParticipants)),
		validation.Field(&d.Images, validation.Length(0, MaxImages), validation.By(imageReferences)),
	)
	if err == nil {
		return nil
	}
	return toAppError(err)
}

// ValidateRejectionReason requires a non-blank reason of bounded length.
func ValidateRejectionReason(reason string) error {
	err := validation.Validate(strings.TrimSpace(reason),
		validation.Required,
		validation.RuneLength(1, MaxReasonLength),
	)
	if err == nil {
		return nil
	}
	return models.NewValidationError("rejection reason: " + err.Error())
}

func knownCategories(value interface{}) error {
	tags, _ := value.([]models.Category)
	for _, tag := range tags {
		if !tag.Valid() {
			return fmt.Errorf("unknown category %q", tag)
		}
	}
	return nil
}

func namedParticipants(value interface{}) error {
	participants, _ := value.([]models.Participant)
	for i, p := range participants {
		if p.FullName == "" {
			return fmt.Errorf("participant %d has no name", i+1)
		}
		if len([]rune(p.FullName)) > MaxParticipantName {
			return fmt.Errorf("participant %d name is longer than %d characters", i+1, MaxParticipantName)
		}
	}
	return nil
}

func imageReferences(value interface{}) error {
	images, _ := value.([]string)
	for i, ref := range images {
		if err := ValidateImageReference(ref); err != nil {
			return fmt.Errorf("image %d: %w", i+1, err)
		}
	}
	return nil
}

// ValidateImageReference accepts http(s) URLs and base64 image data URLs.
// It checks the shape only; decoding happens when the image is normalized.
func ValidateImageReference(ref string) error {
	switch {
	case strings.HasPrefix(ref, "data:"):
		header, _, ok := strings.Cut(ref, ",")
		if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
			return errors.New("must be a base64 image data URL")
		}
		return nil
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		u, err := url.Parse(ref)
		if err != nil || u.Host == "" {
			return errors.New("must be a valid URL")
		}
		return nil
	default:
		return errors.New("must be an http(s) URL or an image data URL")
	}
}

func toAppError(err error) error {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		return models.NewValidationError(fieldErrs.Error())
	}
	return models.NewValidationError(err.Error())
}
