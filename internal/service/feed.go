package service

import (
	"strings"

	"postboard/internal/models"
)

// FilterFeed keeps posts whose title, description or author name contains
// query (case-insensitive) and that carry at least one of tags. An empty
// query or tag selection does not filter.
func FilterFeed(posts []models.Post, query string, tags []models.Category) []models.Post {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Post, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		if q != "" && !matchesQuery(p, q) {
			continue
		}
		if len(tags) > 0 && !p.HasTag(tags...) {
			continue
		}
		out = append(out, *p)
	}
	return out
}

func matchesQuery(p *models.Post, q string) bool {
	return strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Description), q) ||
		strings.Contains(strings.ToLower(p.AuthorName), q)
}

// ParseTags splits a comma separated tag list, ignoring blanks. Unknown
// values are kept: they stay part of the selection and match no post.
func ParseTags(raw string) []models.Category {
	var tags []models.Category
	for _, part := range strings.Split(raw, ",") {
		if tag := models.Category(strings.TrimSpace(part)); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
