package controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/celumarket/celumarket/app/repository"
	"github.com/celumarket/celumarket/internal/pkg/apperror"
	"github.com/celumarket/celumarket/internal/pkg/usercontext"
)

// respondError renders err as {"error": code, "message": text} with the status
// of its kind. Unexpected errors are logged and rendered with a generic message.
func respondError(c *fiber.Ctx, err error) error {
	kind := apperror.KindOf(err)
	if kind == apperror.Unexpected {
		log.Errorf("[API] %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(kind.HTTPStatus()).JSON(fiber.Map{
		"error":   kind.String(),
		"message": apperror.MessageOf(err),
	})
}

// parseID reads a positive numeric route parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Newf(apperror.Validation, "invalid %s %q", name, raw)
	}
	return uint(id), nil
}

// parsePagination reads ?page= and ?limit=; out of range values are clamped later.
func parsePagination(c *fiber.Ctx) repository.Pagination {
	return repository.Pagination{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", repository.DefaultPageSize),
	}
}

// parseOptionalBool returns nil when key is absent.
func parseOptionalBool(c *fiber.Ctx, key string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperror.Newf(apperror.Validation, "invalid %s %q", key, raw)
	}
	return &v, nil
}

// requireUserID returns the logged-in user's id or an Unauthenticated error.
func requireUserID(c *fiber.Ctx) (uint, error) {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn || userCtx.UserID == 0 {
		return 0, apperror.NewUnauthenticated("login required")
	}
	return userCtx.UserID, nil
}

// GetClientIP determines the client address, preferring proxy headers
// (Cloudflare, then the first X-Forwarded-For hop) over the socket address.
func GetClientIP(c *fiber.Ctx) string {
	if cfIP := strings.TrimSpace(c.Get("CF-Connecting-IP")); cfIP != "" {
		return cfIP
	}

	if xff := c.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}

	if realIP := strings.TrimSpace(c.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	return strings.TrimPrefix(c.IP(), "::ffff:")
}
