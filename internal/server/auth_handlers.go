package server

import (
	"postboard/internal/auth"
	"postboard/internal/middleware"
	"postboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Login handles POST /api/auth/login
// @Summary Log in
// @Description Authenticate against the identity registry and return a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string} true "Login credentials"
// @Success 200 {object} service.Session
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	session, err := s.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(session)
}

// Logout handles POST /api/auth/logout
// @Summary Log out
// @Description Revoke the current session token
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.authService.Logout(c.UserContext(), middleware.ClaimsFrom(c)); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// Me handles GET /api/auth/me
// @Summary Current identity
// @Description Return the logged-in identity, its capabilities and evaluated feature flags
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{identity=models.Identity,capabilities=[]string,feature_flags=object}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/me [get]
func (s *Server) Me(c *fiber.Ctx) error {
	identity := middleware.IdentityFrom(c)
	return c.JSON(fiber.Map{
		"identity":      identity,
		"capabilities":  auth.Capabilities(identity.Role),
		"feature_flags": s.featureFlags.Snapshot(identity.ID),
	})
}
