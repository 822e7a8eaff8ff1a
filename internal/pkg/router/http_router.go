package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/celumarket/celumarket/internal/pkg/middleware"
	"github.com/celumarket/celumarket/internal/pkg/session"
)

type HttpRouter struct {
	sessions *session.Manager
	ctrls    *Controllers
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware(h.sessions))

	// Social OAuth
	if h.ctrls.OAuth != nil {
		app.Get("/auth/:provider", h.ctrls.OAuth.HandleBegin)
		app.Get("/auth/:provider/callback", h.ctrls.OAuth.HandleCallback)
	}
}

func NewHttpRouter(sessions *session.Manager, ctrls *Controllers) *HttpRouter {
	return &HttpRouter{sessions: sessions, ctrls: ctrls}
}
