package session

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis"
	goredis "github.com/redis/go-redis/v9"

	"github.com/celumarket/celumarket/internal/pkg/env"
	"github.com/celumarket/celumarket/internal/pkg/usercontext"
)

// Manager wraps the fiber session store holding the logged-in identity.
type Manager struct {
	store *session.Store
}

// NewRedisManager keeps sessions in Redis database 1 of the server the cache client uses.
func NewRedisManager(cacheClient *goredis.Client) *Manager {
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	if cacheClient != nil {
		addr := cacheClient.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if p := cacheClient.Options().Password; p != "" {
			password = p
		}
	}

	storage := redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1,
		Reset:    false,
	})

	return NewManager(session.Config{
		Storage:        storage,
		CookieHTTPOnly: true,
		CookieSecure:   !env.IsDev(),
		Expiration:     time.Hour * 24,
		KeyLookup:      "cookie:session_id",
	})
}

// NewManager builds a manager from an explicit config; an empty config uses
// the in-memory storage.
func NewManager(cfg session.Config) *Manager {
	return &Manager{store: session.New(cfg)}
}

// Identity is what a session remembers about the logged-in user.
type Identity struct {
	UserID  uint
	Email   string
	Name    string
	IsAdmin bool
}

// Login stores identity in the caller's session, rotating the session id.
func (m *Manager) Login(c *fiber.Ctx, identity Identity) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if err := sess.Regenerate(); err != nil {
		return fmt.Errorf("failed to regenerate session: %w", err)
	}
	sess.Set(usercontext.KeyUserID, identity.UserID)
	sess.Set(usercontext.KeyUserEmail, identity.Email)
	sess.Set(usercontext.KeyUserName, identity.Name)
	sess.Set(usercontext.KeyIsAdmin, identity.IsAdmin)
	return sess.Save()
}

func (m *Manager) Logout(c *fiber.Ctx) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	return sess.Destroy()
}

// Identity returns the identity stored in the caller's session, if any.
func (m *Manager) Identity(c *fiber.Ctx) (Identity, bool) {
	sess, err := m.store.Get(c)
	if err != nil {
		return Identity{}, false
	}
	userID, ok := sess.Get(usercontext.KeyUserID).(uint)
	if !ok || userID == 0 {
		return Identity{}, false
	}
	email, _ := sess.Get(usercontext.KeyUserEmail).(string)
	name, _ := sess.Get(usercontext.KeyUserName).(string)
	isAdmin, _ := sess.Get(usercontext.KeyIsAdmin).(bool)
	return Identity{UserID: userID, Email: email, Name: name, IsAdmin: isAdmin}, true
}
