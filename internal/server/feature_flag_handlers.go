package server

import (
	"postboard/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags returns configured feature flags and evaluated state for the current identity.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	identityID := ""
	if identity := middleware.IdentityFrom(c); identity != nil {
		identityID = identity.ID
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(identityID),
	})
}
