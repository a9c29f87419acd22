package server

import (
	"strings"

	"postboard/internal/middleware"
	"postboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetAdminPosts handles GET /api/admin/posts
// @Summary Moderation lists
// @Description Pending posts oldest first; approved, rejected and author lists newest first
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param status query string false "pending, approved or rejected; empty lists every post"
// @Param author query string false "Exact author display name"
// @Success 200 {array} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/posts [get]
func (s *Server) GetAdminPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	status := models.PostStatus(strings.ToLower(strings.TrimSpace(c.Query("status"))))
	if status != "" && !status.Valid() {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("status must be pending, approved or rejected"))
	}

	author := strings.TrimSpace(c.Query("author"))
	if author == "" {
		posts, err := s.postService.PostsByStatus(ctx, status)
		if err != nil {
			return s.respondServiceError(c, err)
		}
		return c.JSON(posts)
	}

	posts, err := s.postService.PostsByAuthor(ctx, author)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	if status != "" {
		filtered := make([]models.Post, 0, len(posts))
		for _, p := range posts {
			if p.Status == status {
				filtered = append(filtered, p)
			}
		}
		posts = filtered
	}
	return c.JSON(posts)
}

// GetPostCounts handles GET /api/admin/posts/counts
// @Summary Posts per status
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.StatusCounts
// @Router /admin/posts/counts [get]
func (s *Server) GetPostCounts(c *fiber.Ctx) error {
	counts, err := s.postService.Counts(c.UserContext())
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(counts)
}

// ApprovePost handles POST /api/admin/posts/:id/approve
// @Summary Approve a pending post
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/posts/{id}/approve [post]
func (s *Server) ApprovePost(c *fiber.Ctx) error {
	return s.decide(c, models.DecisionApprove)
}

// RejectPost handles POST /api/admin/posts/:id/reject
// @Summary Reject a pending post
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body object{reason=string} true "Rejection reason shown to the student"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/posts/{id}/reject [post]
func (s *Server) RejectPost(c *fiber.Ctx) error {
	return s.decide(c, models.DecisionReject)
}

func (s *Server) decide(c *fiber.Ctx, decision models.Decision) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
	}

	post, err := s.postService.Decide(c.UserContext(), id, decision, middleware.IdentityFrom(c), req.Reason)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(post)
}
