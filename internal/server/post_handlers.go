package server

import (
	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/posts
// @Summary Approved feed
// @Description Approved posts, newest first, optionally filtered by a search query and category tags
// @Tags posts
// @Produce json
// @Param q query string false "Case-insensitive search over title, description and author"
// @Param tags query string false "Comma separated categories; a post matches if it has any of them"
// @Success 200 {array} models.Post
// @Router /posts [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	posts, err := s.postService.ApprovedPosts(c.UserContext())
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(service.FilterFeed(posts, c.Query("q"), service.ParseTags(c.Query("tags"))))
}

// GetCategories handles GET /api/posts/categories
// @Summary Category vocabulary
// @Tags posts
// @Produce json
// @Success 200 {array} string
// @Router /posts/categories [get]
func (s *Server) GetCategories(c *fiber.Ctx) error {
	return c.JSON(models.Categories)
}

// GetMyPosts handles GET /api/posts/mine
// @Summary My submissions
// @Description Approved posts the logged-in student submitted
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Post
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /posts/mine [get]
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ApprovedPostsByAuthorID(c.UserContext(), middleware.IdentityFrom(c).ID)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// SubmitPost handles POST /api/posts
// @Summary Submit a post
// @Description Students submit a post; it starts pending until an admin reviews it
// @Tags posts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.PostDraft true "Post content"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) SubmitPost(c *fiber.Ctx) error {
	var draft models.PostDraft
	if err := c.BodyParser(&draft); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Submit(c.UserContext(), draft, middleware.IdentityFrom(c))
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post
// @Description Approved posts are public; admins see every post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id, middleware.IdentityFrom(c))
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(post)
}

// GetPrintLayout handles GET /api/posts/:id/print
// @Summary Print layout
// @Description Layout data for printing a post on a display board
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Param orientation query string false "portrait or landscape (default)"
// @Success 200 {object} service.PrintLayout
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/print [get]
func (s *Server) GetPrintLayout(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	orientation, err := service.ParseOrientation(c.Query("orientation"))
	if err != nil {
		return s.respondServiceError(c, err)
	}

	layout, err := s.postService.PrintPreview(c.UserContext(), id, middleware.IdentityFrom(c), orientation)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(layout)
}
