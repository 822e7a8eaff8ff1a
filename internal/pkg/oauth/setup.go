package oauth

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/session"
	redisstorage "github.com/gofiber/storage/redis"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/facebook"
	"github.com/markbates/goth/providers/google"
	goredis "github.com/redis/go-redis/v9"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/celumarket/celumarket/internal/pkg/env"
)

// Setup registers the providers that have credentials configured and moves the
// OAuth state session into Redis database 2. It returns the registered provider
// names.
func Setup(cacheClient *goredis.Client) []string {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	if base == "" {
		base = "http://localhost:" + env.GetEnv("APP_PORT", "4000")
	}

	var providers []goth.Provider
	if key := env.GetEnv("GOOGLE_KEY", ""); key != "" {
		providers = append(providers, google.New(
			key,
			env.GetEnv("GOOGLE_SECRET", ""),
			base+"/auth/google/callback",
			"email", "profile",
		))
	}
	if key := env.GetEnv("FACEBOOK_KEY", ""); key != "" {
		providers = append(providers, facebook.New(
			key,
			env.GetEnv("FACEBOOK_SECRET", ""),
			base+"/auth/facebook/callback",
			"email", "public_profile",
		))
	}

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	if len(providers) == 0 {
		log.Warn("[OAuth] no providers configured")
		return names
	}
	goth.UseProviders(providers...)

	if cacheClient != nil {
		gothfiber.SessionStore = session.New(stateSessionConfig(cacheClient.Options()))
	}
	log.Infof("[OAuth] providers enabled: %s", strings.Join(names, ", "))
	return names
}

func stateSessionConfig(opts *goredis.Options) session.Config {
	host, port := "127.0.0.1", 6379
	if opts != nil && opts.Addr != "" {
		if h, p, err := net.SplitHostPort(opts.Addr); err == nil {
			host = h
			if parsed, e := strconv.Atoi(p); e == nil {
				port = parsed
			}
		} else {
			host = opts.Addr
		}
	}

	var username, password string
	if opts != nil {
		username, password = opts.Username, opts.Password
	}

	return session.Config{
		Storage: redisstorage.New(redisstorage.Config{
			Host:     host,
			Port:     port,
			Username: username,
			Password: password,
			Database: 2,
			Reset:    false,
		}),
		KeyLookup:      "cookie:" + gothic.SessionName,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   !env.IsDev(),
		Expiration:     time.Hour,
	}
}
