package middleware

import (
	"github.com/celumarket/celumarket/internal/pkg/apperror"
	"github.com/celumarket/celumarket/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
)

// RequireAPISessionAuth ensures a logged-in session for API routes and returns JSON 401 instead of redirect.
func RequireAPISessionAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Status(apperror.Unauthenticated.HTTPStatus()).JSON(fiber.Map{
			"error":   apperror.Unauthenticated.String(),
			"message": "login required",
		})
	}
	return c.Next()
}
