package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/celumarket/celumarket/internal/pkg/env"
	"github.com/celumarket/celumarket/internal/pkg/middleware"
)

// limiterKey uses the peer address resolved by fiber, which only trusts
// forwarding headers set by a configured proxy.
func limiterKey(c *fiber.Ctx) string {
	return c.IP()
}

type ApiRouter struct {
	ctrls *Controllers
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", cors.New(cors.Config{
		AllowOrigins:     env.GetEnv("CORS_ORIGINS", "*"),
		AllowCredentials: env.GetEnv("CORS_ORIGINS", "*") != "*",
	}), limiter.New(limiter.Config{
		Max:          env.GetEnvInt("API_RATE_LIMIT", 120),
		Expiration:   time.Minute,
		KeyGenerator: limiterKey,
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// credential endpoints get a much tighter budget
	authLimiter := limiter.New(limiter.Config{
		Max:          env.GetEnvInt("AUTH_RATE_LIMIT", 10),
		Expiration:   time.Minute,
		KeyGenerator: limiterKey,
	})
	auth := api.Group("/auth")
	auth.Post("/register", authLimiter, h.ctrls.Auth.HandleRegister)
	auth.Post("/login", authLimiter, h.ctrls.Auth.HandleLogin)
	auth.Post("/logout", h.ctrls.Auth.HandleLogout)
	auth.Get("/session", h.ctrls.Auth.HandleSession)

	// Public listing detail
	api.Get("/listings/:id", h.ctrls.Listing.HandleListing)

	// Logged-in user
	requireAuth := middleware.RequireAPISessionAuth
	api.Post("/listings/:id/conversation", requireAuth, h.ctrls.Message.HandleStart)
	api.Get("/messages", requireAuth, h.ctrls.Message.HandleList)
	api.Get("/messages/:id", requireAuth, h.ctrls.Message.HandleOpen)
	api.Post("/messages/:id", requireAuth, h.ctrls.Message.HandleSend)
	api.Get("/user/listings", requireAuth, h.ctrls.User.HandleListings)
	api.Put("/user/avatar", requireAuth, h.ctrls.User.HandleAvatar)
	api.Get("/user/notifications", requireAuth, h.ctrls.User.HandleNotifications)
	api.Post("/user/notifications/read", requireAuth, h.ctrls.User.HandleNotificationsRead)
	api.Get("/evaluate/list", requireAuth, h.ctrls.User.HandleEvaluations)

	// Admin; every handler re-checks the role in the store
	admin := api.Group("/admin", requireAuth)
	admin.Get("/dashboard", h.ctrls.Admin.HandleDashboard)
	admin.Get("/listings", h.ctrls.Admin.HandleListings)
	admin.Get("/listings/:id", h.ctrls.Admin.HandleListing)
	admin.Patch("/listings/:id", h.ctrls.Admin.HandleListingModerate)
	admin.Get("/reports", h.ctrls.Admin.HandleReports)
	admin.Get("/reports/:id", h.ctrls.Admin.HandleReport)
	admin.Patch("/reports/:id", h.ctrls.Admin.HandleReportModerate)
	admin.Get("/users", h.ctrls.Admin.HandleUsers)
	admin.Get("/users/:id", h.ctrls.Admin.HandleUser)
	admin.Patch("/users/:id", h.ctrls.Admin.HandleUserModerate)
	if h.ctrls.AdminQueue != nil {
		admin.Get("/queue", h.ctrls.AdminQueue.HandleStats)
		admin.Delete("/queue/failed", h.ctrls.AdminQueue.HandlePurgeFailed)
	}
}

func NewApiRouter(ctrls *Controllers) *ApiRouter {
	return &ApiRouter{ctrls: ctrls}
}
