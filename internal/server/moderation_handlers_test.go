package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"postboard/internal/cache"
	"postboard/internal/config"
	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/repository"
	"postboard/internal/service"
	"postboard/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSpringConcertModeration(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	marco := env.login(t, "student1", studentPassword)
	admin := env.login(t, "admin", adminPassword)

	post := env.submit(t, marco, testutil.Draft("Spring Concert Announcement", models.CategoryMusic, models.CategoryEvent))
	approvePath := fmt.Sprintf("/api/admin/posts/%d/approve", post.ID)
	rejectPath := fmt.Sprintf("/api/admin/posts/%d/reject", post.ID)

	var errBody models.ErrorResponse
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, approvePath, marco, nil, &errBody))
	assert.Equal(t, models.CodeForbidden, errBody.Code)

	errBody = models.ErrorResponse{}
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, rejectPath, admin, map[string]string{"reason": "   "}, &errBody))
	assert.Equal(t, models.CodeValidation, errBody.Code)

	var rejected models.Post
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, rejectPath, admin,
		map[string]string{"reason": "Please add the concert time. "}, &rejected))
	assert.Equal(t, models.PostStatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "Please add the concert time. ", *rejected.RejectionReason)
	require.NotNil(t, rejected.ReviewedByAdminID)
	assert.Equal(t, "admin-001", *rejected.ReviewedByAdminID)
	assert.NotNil(t, rejected.ReviewedAt)

	errBody = models.ErrorResponse{}
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, approvePath, admin, nil, &errBody))
	assert.Equal(t, models.CodeConflict, errBody.Code)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), marco, nil, nil))

	var stored models.Post
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), admin, nil, &stored))
	assert.Equal(t, models.PostStatusRejected, stored.Status)
	assert.Equal(t, "Please add the concert time. ", *stored.RejectionReason)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/admin/posts/999/approve", admin, nil, nil))
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/admin/posts/0/approve", admin, nil, nil))
}

func TestApproveIsDecidedOnceUnderConcurrency(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	student := env.login(t, "student1", studentPassword)
	admin := env.login(t, "admin", adminPassword)
	post := env.submit(t, student, testutil.Draft("Science Fair", models.CategoryAcademic))

	const workers = 8
	statuses := make([]int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := fmt.Sprintf("/api/admin/posts/%d/approve", post.ID)
			body := any(nil)
			if i%2 == 1 {
				path = fmt.Sprintf("/api/admin/posts/%d/reject", post.ID)
				body = map[string]string{"reason": "late"}
			}
			statuses[i] = env.do(t, http.MethodPost, path, admin, body, nil)
		}(i)
	}
	wg.Wait()

	ok, conflict := 0, 0
	for _, s := range statuses {
		switch s {
		case http.StatusOK:
			ok++
		case http.StatusConflict:
			conflict++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, conflict)
}

func TestGetAdminPosts(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	marco := env.login(t, "student1", studentPassword)
	sofia := env.login(t, "student2", studentPassword)
	admin := env.login(t, "admin", adminPassword)

	first := env.submit(t, marco, testutil.Draft("First", models.CategoryClub))
	second := env.submit(t, sofia, testutil.Draft("Second", models.CategoryArts))
	third := env.submit(t, marco, testutil.Draft("Third", models.CategorySports))
	fourth := env.submit(t, sofia, testutil.Draft("Fourth", models.CategoryMusic))

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, fmt.Sprintf("/api/admin/posts/%d/approve", third.ID), admin, nil, nil))
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, fmt.Sprintf("/api/admin/posts/%d/reject", fourth.ID), admin,
		map[string]string{"reason": "Off topic"}, nil))

	tests := []struct {
		name     string
		query    string
		expected []uint
	}{
		{name: "pending oldest first", query: "?status=pending", expected: []uint{first.ID, second.ID}},
		{name: "approved", query: "?status=approved", expected: []uint{third.ID}},
		{name: "rejected", query: "?status=REJECTED", expected: []uint{fourth.ID}},
		{name: "all newest first", query: "", expected: []uint{fourth.ID, third.ID, second.ID, first.ID}},
		{name: "by author", query: "?author=Marco%20Rossi", expected: []uint{third.ID, first.ID}},
		{name: "by author and status", query: "?author=Sofia%20Chen&status=pending", expected: []uint{second.ID}},
		{name: "author match is exact", query: "?author=marco%20rossi", expected: []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var posts []models.Post
			require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/admin/posts"+tt.query, admin, nil, &posts))
			ids := make([]uint, 0, len(posts))
			for _, p := range posts {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}

	var errBody models.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/admin/posts?status=archived", admin, nil, &errBody))
	assert.Equal(t, models.CodeValidation, errBody.Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/admin/posts", marco, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/admin/posts", "", nil, nil))

	var counts models.StatusCounts
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/admin/posts/counts", admin, nil, &counts))
	assert.Equal(t, models.StatusCounts{Pending: 2, Approved: 1, Rejected: 1}, counts)
}

func TestGetFeatureFlags(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.FeatureFlags = "print_preview=off,new_feed=100%"
	})
	admin := env.login(t, "admin", adminPassword)

	var body struct {
		Raw       map[string]string `json:"raw"`
		Evaluated map[string]bool   `json:"evaluated"`
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/admin/feature-flags", admin, nil, &body))
	assert.Equal(t, "off", body.Raw["print_preview"])
	assert.False(t, body.Evaluated["print_preview"])
	assert.True(t, body.Evaluated["moderation_stream"])
	assert.True(t, body.Evaluated["new_feed"])
}

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) List(ctx context.Context, filter repository.ListFilter) ([]models.Post, error) {
	args := m.Called(ctx, filter)
	posts, _ := args.Get(0).([]models.Post)
	return posts, args.Error(1)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	post, _ := args.Get(0).(*models.Post)
	return post, args.Error(1)
}

func (m *MockPostRepository) Insert(ctx context.Context, post *models.Post) error {
	return m.Called(ctx, post).Error(0)
}

func (m *MockPostRepository) UpdateStatus(ctx context.Context, id uint, status models.PostStatus, reviewerID string, reason *string) (*models.Post, error) {
	args := m.Called(ctx, id, status, reviewerID, reason)
	post, _ := args.Get(0).(*models.Post)
	return post, args.Error(1)
}

func (m *MockPostRepository) CountByStatus(ctx context.Context) (models.StatusCounts, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(models.StatusCounts)
	return counts, args.Error(1)
}

func TestStorageErrorsAreGeneric(t *testing.T) {
	t.Parallel()
	mockRepo := new(MockPostRepository)
	mockRepo.On("List", mock.Anything, repository.ListFilter{Status: models.PostStatusPending, OldestFirst: true}).
		Return(nil, errors.New("pq: connection refused to 10.0.0.3"))
	mockRepo.On("CountByStatus", mock.Anything).
		Return(models.StatusCounts{Pending: 3}, nil)

	s := &Server{postService: service.NewPostService(mockRepo, cache.NewStore(nil), nil, nil, 0)}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalIdentity, testutil.Admin)
		return c.Next()
	})
	app.Get("/admin/posts", s.GetAdminPosts)
	app.Get("/admin/posts/counts", s.GetPostCounts)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin/posts?status=pending", nil))
	require.NoError(t, err)
	var body models.ErrorResponse
	require.NoError(t, decodeBody(resp, &body))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, models.CodeStorage, body.Code)
	assert.NotContains(t, body.Error, "10.0.0.3")
	assert.Empty(t, body.Details)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/admin/posts/counts", nil))
	require.NoError(t, err)
	var counts models.StatusCounts
	require.NoError(t, decodeBody(resp, &counts))
	assert.Equal(t, int64(3), counts.Pending)

	mockRepo.AssertExpectations(t)
}
