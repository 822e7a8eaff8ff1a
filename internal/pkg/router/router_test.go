package router

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celumarket/celumarket/app/controllers"
	"github.com/celumarket/celumarket/app/models"
	"github.com/celumarket/celumarket/app/repository/repotest"
	"github.com/celumarket/celumarket/internal/pkg/access"
	"github.com/celumarket/celumarket/internal/pkg/media"
	"github.com/celumarket/celumarket/internal/pkg/messaging"
	"github.com/celumarket/celumarket/internal/pkg/moderation"
	"github.com/celumarket/celumarket/internal/pkg/session"
	"github.com/celumarket/celumarket/internal/pkg/statistics"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	return newTestAppWithConfig(t, fiber.Config{})
}

func newTestAppWithConfig(t *testing.T, cfg fiber.Config) *fiber.App {
	t.Helper()
	store := repotest.NewStore()
	store.AddUser(models.User{Name: "Admin", Email: "admin@celumarket.test", Role: models.ROLE_ADMIN})
	repos := store.Repositories()
	guard := access.NewGuard(repos.User)
	sessions := session.NewManager(fibersession.Config{KeyLookup: "cookie:session_id"})

	auth := controllers.NewAuthController(repos.User, sessions, nil, nil)
	ctrls := &Controllers{
		Admin:   controllers.NewAdminController(moderation.NewService(repos, guard, nil), statistics.NewService(repos, guard, nil)),
		Auth:    auth,
		OAuth:   controllers.NewOAuthController(auth, repos.User, "/"),
		Message: controllers.NewMessageController(messaging.NewService(repos, nil)),
		User:    controllers.NewUserController(repos, media.NewAvatarService(media.NewLocalStore(t.TempDir(), "/uploads"), repos.User)),
		Listing: controllers.NewListingController(repos.Listing, nil),
	}

	app := fiber.New(cfg)
	InstallRouter(app, sessions, ctrls)
	return app
}

func TestAnonymousRequests(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{fiber.MethodGet, "/api/", fiber.StatusOK},
		{fiber.MethodGet, "/api/auth/session", fiber.StatusOK},
		{fiber.MethodGet, "/api/admin/listings", fiber.StatusUnauthorized},
		{fiber.MethodPatch, "/api/admin/listings/1", fiber.StatusUnauthorized},
		{fiber.MethodGet, "/api/messages/1", fiber.StatusUnauthorized},
		{fiber.MethodGet, "/api/user/listings", fiber.StatusUnauthorized},
		{fiber.MethodPut, "/api/user/avatar", fiber.StatusUnauthorized},
		{fiber.MethodGet, "/api/evaluate/list", fiber.StatusUnauthorized},
		{fiber.MethodGet, "/api/listings/42", fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(tt.method, tt.path, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRateLimitIgnoresSpoofedForwardingHeaders(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"api", fiber.MethodGet, "/api/"},
		{"login", fiber.MethodPost, "/api/auth/login"},
		{"register", fiber.MethodPost, "/api/auth/register"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("API_RATE_LIMIT", "2")
			t.Setenv("AUTH_RATE_LIMIT", "2")
			t.Setenv("TRUSTED_PROXIES", "10.10.10.10")
			app := newTestAppWithConfig(t, WithProxyConfig(fiber.Config{}))

			var statuses []int
			for i := 1; i <= 3; i++ {
				req := httptest.NewRequest(tt.method, tt.path, nil)
				req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
				req.Header.Set("X-Real-IP", fmt.Sprintf("198.51.100.%d", i))
				req.Header.Set("CF-Connecting-IP", fmt.Sprintf("192.0.2.%d", i))
				resp, err := app.Test(req, -1)
				require.NoError(t, err)
				statuses = append(statuses, resp.StatusCode)
			}
			assert.NotEqual(t, fiber.StatusTooManyRequests, statuses[0])
			assert.NotEqual(t, fiber.StatusTooManyRequests, statuses[1])
			assert.Equal(t, fiber.StatusTooManyRequests, statuses[2])
		})
	}
}

func TestWithProxyConfig(t *testing.T) {
	t.Run("no trusted proxies", func(t *testing.T) {
		t.Setenv("TRUSTED_PROXIES", "")
		cfg := WithProxyConfig(fiber.Config{AppName: "celumarket"})
		assert.Equal(t, "celumarket", cfg.AppName)
		assert.Empty(t, cfg.ProxyHeader)
		assert.False(t, cfg.EnableTrustedProxyCheck)
	})

	t.Run("trusted proxies", func(t *testing.T) {
		t.Setenv("TRUSTED_PROXIES", " 10.0.0.1, 172.16.0.0/12 ,")
		t.Setenv("PROXY_HEADER", "")
		cfg := WithProxyConfig(fiber.Config{})
		assert.Equal(t, fiber.HeaderXForwardedFor, cfg.ProxyHeader)
		assert.True(t, cfg.EnableTrustedProxyCheck)
		assert.Equal(t, []string{"10.0.0.1", "172.16.0.0/12"}, cfg.TrustedProxies)
	})
}
