package server

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"postboard/internal/models"
	"postboard/internal/repository"
	"postboard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitPost_RoleGating(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	student := env.login(t, "student1", studentPassword)
	admin := env.login(t, "admin", adminPassword)
	draft := testutil.Draft("Chess Club Kickoff", models.CategoryClub)

	tests := []struct {
		name           string
		token          string
		expectedStatus int
		expectedCode   string
	}{
		{name: "anonymous", expectedStatus: http.StatusUnauthorized, expectedCode: models.CodeUnauthorized},
		{name: "admin", token: admin, expectedStatus: http.StatusForbidden, expectedCode: models.CodeForbidden},
		{name: "student", token: student, expectedStatus: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body struct {
				models.Post
				Code string `json:"code"`
			}
			status := env.do(t, http.MethodPost, "/api/posts", tt.token, draft, &body)
			assert.Equal(t, tt.expectedStatus, status)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, body.Code)
				return
			}
			assert.Equal(t, models.PostStatusPending, body.Status)
			assert.Equal(t, "Marco Rossi", body.AuthorName)
			assert.Equal(t, "student-001", body.AuthorID)
			assert.Nil(t, body.ReviewedAt)
		})
	}

	counts, err := env.server.postService.Counts(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Pending)
}

func TestSubmitPost_Validation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.login(t, "student1", studentPassword)

	tests := []struct {
		name  string
		draft models.PostDraft
	}{
		{name: "empty title", draft: models.PostDraft{Description: "d", CategoryTags: []models.Category{models.CategoryArts}}},
		{name: "no tags", draft: models.PostDraft{Title: "t", Description: "d"}},
		{name: "unknown tag", draft: models.PostDraft{Title: "t", Description: "d", CategoryTags: []models.Category{"Gaming"}}},
		{name: "title too long", draft: models.PostDraft{Title: strings.Repeat("a", 101), Description: "d", CategoryTags: []models.Category{models.CategoryArts}}},
		{name: "bad image", draft: models.PostDraft{Title: "t", Description: "d", CategoryTags: []models.Category{models.CategoryArts}, Images: []string{"ftp://nope"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body models.ErrorResponse
			status := env.do(t, http.MethodPost, "/api/posts", token, tt.draft, &body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, models.CodeValidation, body.Code)
		})
	}

	var body models.ErrorResponse
	status := env.do(t, http.MethodPost, "/api/posts", token, nil, &body)
	assert.Equal(t, http.StatusBadRequest, status)

	posts, err := env.server.postRepo.List(t.Context(), repository.ListFilter{AuthorID: "student-001"})
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestFeedShowsOnlyApprovedPosts(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	student := env.login(t, "student1", studentPassword)
	admin := env.login(t, "admin", adminPassword)

	approved := env.submit(t, student, testutil.Draft("Basketball Team Wins", models.CategorySports, models.CategoryEvent))
	env.submit(t, student, testutil.Draft("Spring Concert", models.CategoryMusic))
	rejected := env.submit(t, student, testutil.Draft("Bake Sale", models.CategoryCommunityService))

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, fmt.Sprintf("/api/admin/posts/%d/approve", approved.ID), admin, nil, nil))
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, fmt.Sprintf("/api/admin/posts/%d/reject", rejected.ID), admin,
		map[string]string{"reason": "Duplicate"}, nil))

	for _, token := range []string{"", student, admin} {
		var feed []models.Post
		require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/posts", token, nil, &feed))
		require.Len(t, feed, 1)
		assert.Equal(t, approved.ID, feed[0].ID)
		assert.ElementsMatch(t, []models.Category{models.CategorySports, models.CategoryEvent}, []models.Category(feed[0].CategoryTags))
	}

	var mine []models.Post
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/posts/mine", student, nil, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, approved.ID, mine[0].ID)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/posts/mine", admin, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/posts/mine", "", nil, nil))
}

func TestFeedFilters(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	student := env.login(t, "student1", studentPassword)
	admin := env.login(t, "admin", adminPassword)

	for _, d := range []models.PostDraft{
		testutil.Draft("Model UN Conference", models.CategoryClub, models.CategoryAcademic),
		testutil.Draft("Basketball Championship", models.CategorySports),
		testutil.Draft("Spring Concert", models.CategoryMusic, models.CategoryEvent),
	} {
		post := env.submit(t, student, d)
		require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, fmt.Sprintf("/api/admin/posts/%d/approve", post.ID), admin, nil, nil))
	}

	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{name: "no filter", query: "", expected: []string{"Spring Concert", "Basketball Championship", "Model UN Conference"}},
		{name: "case-insensitive query", query: "?q=CONCERT", expected: []string{"Spring Concert"}},
		{name: "author match", query: "?q=marco", expected: []string{"Spring Concert", "Basketball Championship", "Model UN Conference"}},
		{name: "any tag", query: "?tags=Sports,Academic", expected: []string{"Basketball Championship", "Model UN Conference"}},
		{name: "query and tag", query: "?q=model&tags=Sports", expected: []string{}},
		{name: "encoded tag", query: "?tags=Community%20Service", expected: []string{}},
		{name: "unknown tag matches nothing", query: "?tags=Basketball", expected: []string{}},
		{name: "unknown tag beside a known one", query: "?tags=Basketball,Sports", expected: []string{"Basketball Championship"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var feed []models.Post
			require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/posts"+tt.query, "", nil, &feed))
			titles := make([]string, 0, len(feed))
			for _, p := range feed {
				titles = append(titles, p.Title)
			}
			assert.Equal(t, tt.expected, titles)
		})
	}
}

func TestGetPost_Visibility(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	marco := env.login(t, "student1", studentPassword)
	sofia := env.login(t, "student2", studentPassword)
	admin := env.login(t, "admin", adminPassword)

	post := env.submit(t, marco, testutil.Draft("Robotics Demo", models.CategoryClub))
	path := fmt.Sprintf("/api/posts/%d", post.ID)

	tests := []struct {
		name           string
		token          string
		expectedStatus int
	}{
		{name: "author gets not found for own pending post", token: marco, expectedStatus: http.StatusNotFound},
		{name: "admin sees pending post", token: admin, expectedStatus: http.StatusOK},
		{name: "other student gets not found", token: sofia, expectedStatus: http.StatusNotFound},
		{name: "anonymous gets not found", expectedStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedStatus, env.do(t, http.MethodGet, path, tt.token, nil, nil))
		})
	}

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/posts/abc", "", nil, nil))
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/posts/999", admin, nil, nil))
}

func TestGetPost_OwnRejectedPostIsHidden(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	student := env.login(t, "student1", studentPassword)
	admin := env.login(t, "admin", adminPassword)

	post := env.submit(t, student, testutil.Draft("Chess Club Flyer", models.CategoryClub))
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, fmt.Sprintf("/api/admin/posts/%d/reject", post.ID), admin,
		map[string]string{"reason": "off topic"}, nil))

	var body models.ErrorResponse
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), student, nil, &body))
	assert.NotContains(t, body.Error, "off topic")

	var mine []models.Post
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/posts/mine", student, nil, &mine))
	assert.Empty(t, mine)
}

func TestGetCategories(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	var categories []models.Category
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/posts/categories", "", nil, &categories))
	assert.Equal(t, models.Categories, categories)
}
