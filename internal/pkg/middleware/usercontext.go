package middleware

import (
	"strings"

	"github.com/celumarket/celumarket/internal/pkg/session"
	"github.com/celumarket/celumarket/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware resolves the session identity for every request and
// stores it as the request's UserContext.
func UserContextMiddleware(sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Goth keeps its own session on /auth/*, ours would collide with it.
		if strings.HasPrefix(c.Path(), "/auth/") {
			usercontext.Set(c, usercontext.UserContext{})
			return c.Next()
		}

		identity, ok := sessions.Identity(c)
		if !ok {
			usercontext.Set(c, usercontext.UserContext{})
			return c.Next()
		}

		usercontext.Set(c, usercontext.UserContext{
			UserID:     identity.UserID,
			Email:      identity.Email,
			Name:       identity.Name,
			IsLoggedIn: true,
			IsAdmin:    identity.IsAdmin,
		})
		return c.Next()
	}
}
