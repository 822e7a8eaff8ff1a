package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/require"

	"github.com/celumarket/celumarket/app/models"
	"github.com/celumarket/celumarket/app/repository"
	"github.com/celumarket/celumarket/app/repository/repotest"
	"github.com/celumarket/celumarket/internal/pkg/access"
	"github.com/celumarket/celumarket/internal/pkg/media"
	"github.com/celumarket/celumarket/internal/pkg/messaging"
	"github.com/celumarket/celumarket/internal/pkg/moderation"
	"github.com/celumarket/celumarket/internal/pkg/session"
	"github.com/celumarket/celumarket/internal/pkg/statistics"
	"github.com/celumarket/celumarket/internal/pkg/usercontext"
)

const (
	adminEmail  = "admin@celumarket.test"
	sellerEmail = "seller@celumarket.test"
	buyerEmail  = "buyer@celumarket.test"
	testUser    = "X-Test-User"
)

type recordingWelcomer struct {
	mu    sync.Mutex
	users []uint
}

func (w *recordingWelcomer) Welcome(_ context.Context, user *models.User) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.users = append(w.users, user.ID)
}

type harness struct {
	store    *repotest.Store
	repos    *repository.Repositories
	app      *fiber.App
	welcomer *recordingWelcomer
	admin    models.User
	seller   models.User
	buyer    models.User
	device   models.Device
}

// newHarness builds the API against in-memory repositories. Requests carrying
// the X-Test-User header are treated as logged in as that email.
func newHarness(t *testing.T) *harness {
	t.Helper()

	store := repotest.NewStore()
	h := &harness{
		store:    store,
		repos:    store.Repositories(),
		welcomer: &recordingWelcomer{},
	}
	h.admin = store.AddUser(models.User{Name: "Admin", Email: adminEmail, Role: models.ROLE_ADMIN})
	h.seller = store.AddUser(models.User{Name: "Marta Seller", Email: sellerEmail})
	h.buyer = store.AddUser(models.User{Name: "Bruno Buyer", Email: buyerEmail})
	h.device = store.AddDevice(models.Device{Brand: "Apple", Model: "iPhone 12", Storage: "128GB"})

	guard := access.NewGuard(h.repos.User)
	sessions := session.NewManager(fibersession.Config{KeyLookup: "cookie:session_id"})
	avatarStore := media.NewLocalStore(t.TempDir(), "/uploads")

	adminCtrl := NewAdminController(moderation.NewService(h.repos, guard, nil), statistics.NewService(h.repos, guard, nil))
	authCtrl := NewAuthController(h.repos.User, sessions, nil, h.welcomer)
	messageCtrl := NewMessageController(messaging.NewService(h.repos, nil))
	userCtrl := NewUserController(h.repos, media.NewAvatarService(avatarStore, h.repos.User))
	listingCtrl := NewListingController(h.repos.Listing, nil)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if email := c.Get(testUser); email != "" {
			if u, err := h.repos.User.GetByEmail(email); err == nil {
				usercontext.Set(c, usercontext.UserContext{
					UserID:     u.ID,
					Email:      u.Email,
					Name:       u.Name,
					IsLoggedIn: true,
					IsAdmin:    u.IsAdmin(),
				})
			}
		}
		return c.Next()
	})

	api := app.Group("/api")
	api.Post("/auth/register", authCtrl.HandleRegister)
	api.Post("/auth/login", authCtrl.HandleLogin)
	api.Post("/auth/logout", authCtrl.HandleLogout)

	admin := api.Group("/admin")
	admin.Get("/dashboard", adminCtrl.HandleDashboard)
	admin.Get("/listings", adminCtrl.HandleListings)
	admin.Get("/listings/:id", adminCtrl.HandleListing)
	admin.Patch("/listings/:id", adminCtrl.HandleListingModerate)
	admin.Get("/reports", adminCtrl.HandleReports)
	admin.Get("/reports/:id", adminCtrl.HandleReport)
	admin.Patch("/reports/:id", adminCtrl.HandleReportModerate)
	admin.Get("/users", adminCtrl.HandleUsers)
	admin.Get("/users/:id", adminCtrl.HandleUser)
	admin.Patch("/users/:id", adminCtrl.HandleUserModerate)

	api.Get("/messages", messageCtrl.HandleList)
	api.Get("/messages/:id", messageCtrl.HandleOpen)
	api.Post("/messages/:id", messageCtrl.HandleSend)
	api.Post("/listings/:id/conversation", messageCtrl.HandleStart)
	api.Get("/listings/:id", listingCtrl.HandleListing)

	api.Get("/user/listings", userCtrl.HandleListings)
	api.Put("/user/avatar", userCtrl.HandleAvatar)
	api.Get("/evaluate/list", userCtrl.HandleEvaluations)
	api.Get("/user/notifications", userCtrl.HandleNotifications)

	h.app = app
	return h
}

func (h *harness) addListing(moderationStatus string) models.Listing {
	return h.store.AddListing(models.Listing{
		DeviceID:         h.device.ID,
		UserID:           h.seller.ID,
		Title:            "iPhone 12 128GB",
		Condition:        models.ConditionGood,
		Price:            420,
		Location:         "Bogotá",
		Status:           models.ListingStatusActive,
		ModerationStatus: moderationStatus,
	})
}

// request sends a JSON request as the given email ("" for anonymous) and
// decodes the JSON response body.
func (h *harness) request(t *testing.T, method, path, as string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(raw)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if as != "" {
		req.Header.Set(testUser, as)
	}
	return h.send(t, req)
}

func (h *harness) send(t *testing.T, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()

	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp, decoded
}
