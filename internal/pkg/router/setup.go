package router

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/celumarket/celumarket/app/controllers"
	"github.com/celumarket/celumarket/internal/pkg/env"
	"github.com/celumarket/celumarket/internal/pkg/session"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Controllers bundles the handlers mounted by the routers.
type Controllers struct {
	Admin      *controllers.AdminController
	AdminQueue *controllers.AdminQueueController
	Auth       *controllers.AuthController
	OAuth      *controllers.OAuthController
	Message    *controllers.MessageController
	User       *controllers.UserController
	Listing    *controllers.ListingController
}

func InstallRouter(app *fiber.App, sessions *session.Manager, ctrls *Controllers) {
	// HttpRouter installs the user context middleware the API routes rely on,
	// so it has to go first.
	setup(app, NewHttpRouter(sessions, ctrls), NewApiRouter(ctrls))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}

// WithProxyConfig makes c.IP() honour PROXY_HEADER, but only for requests that
// arrive from one of TRUSTED_PROXIES. Without trusted proxies the header is ignored.
func WithProxyConfig(cfg fiber.Config) fiber.Config {
	var proxies []string
	for _, p := range strings.Split(env.GetEnv("TRUSTED_PROXIES", ""), ",") {
		if p = strings.TrimSpace(p); p != "" {
			proxies = append(proxies, p)
		}
	}
	if len(proxies) == 0 {
		return cfg
	}
	cfg.ProxyHeader = env.GetEnv("PROXY_HEADER", fiber.HeaderXForwardedFor)
	cfg.EnableTrustedProxyCheck = true
	cfg.TrustedProxies = proxies
	return cfg
}
