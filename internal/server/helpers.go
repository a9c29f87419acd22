package server

import (
	"errors"
	"log/slog"

	"postboard/internal/middleware"
	"postboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// respondServiceError writes err with the status its AppError code maps to.
// Errors without a code are treated as internal.
func (s *Server) respondServiceError(c *fiber.Ctx, err error) error {
	code := models.ErrorCode(err)
	if code == "" {
		err = models.NewInternalError(err)
		code = models.CodeInternal
	}
	status := models.StatusForCode(code)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "Request failed",
			slog.String("path", c.Path()),
			slog.String("code", code),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, status, err)
}

// requireFeature hides a route behind a feature flag. Disabled features
// read as missing routes.
func (s *Server) requireFeature(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identityID := ""
		if identity := middleware.IdentityFrom(c); identity != nil {
			identityID = identity.ID
		}
		if !s.featureFlags.Enabled(name, identityID) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				&models.AppError{Code: models.CodeNotFound, Message: "This feature is not available"})
		}
		return c.Next()
	}
}
