package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/celumarket/celumarket/app/controllers"
	"github.com/celumarket/celumarket/app/repository"
	"github.com/celumarket/celumarket/internal/pkg/access"
	"github.com/celumarket/celumarket/internal/pkg/cache"
	"github.com/celumarket/celumarket/internal/pkg/database"
	"github.com/celumarket/celumarket/internal/pkg/env"
	"github.com/celumarket/celumarket/internal/pkg/hcaptcha"
	"github.com/celumarket/celumarket/internal/pkg/jobqueue"
	"github.com/celumarket/celumarket/internal/pkg/mail"
	"github.com/celumarket/celumarket/internal/pkg/media"
	"github.com/celumarket/celumarket/internal/pkg/messaging"
	"github.com/celumarket/celumarket/internal/pkg/metrics"
	"github.com/celumarket/celumarket/internal/pkg/metrics/counter"
	"github.com/celumarket/celumarket/internal/pkg/moderation"
	"github.com/celumarket/celumarket/internal/pkg/notify"
	"github.com/celumarket/celumarket/internal/pkg/oauth"
	"github.com/celumarket/celumarket/internal/pkg/router"
	"github.com/celumarket/celumarket/internal/pkg/session"
	"github.com/celumarket/celumarket/internal/pkg/statistics"
)

func main() {
	app, manager := NewApplication()
	manager.Start()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("[Main] shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Errorf("[Main] shutdown: %v", err)
		}
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	manager.Stop()
	if err != nil {
		log.Fatal(err)
	}
}

// findBasePath locates the project root from the usual working directories.
func findBasePath() string {
	for _, path := range []string{"./", "../../", "../../../"} {
		if _, err := os.Stat(path + "public"); err == nil {
			return path
		}
	}
	return "./"
}

// NewApplication wires the store, cache, background workers and HTTP routes.
// The returned manager is not started.
func NewApplication() (*fiber.App, *jobqueue.Manager) {
	env.SetupEnvFile()
	ctx := context.Background()
	basePath := findBasePath()

	db, err := database.SetupDatabase(database.ConfigFromEnv())
	if err != nil {
		log.Fatalf("[Main] database: %v", err)
	}
	redisClient := cache.SetupCache()
	repos := repository.NewFactory(db, redisClient).GetRepositories()

	// background work: email delivery and view counter flushing
	appName := env.GetEnv("APP_NAME", "CeluMarket")
	renderer, err := mail.NewRenderer(appName, env.GetEnv("PUBLIC_DOMAIN", ""))
	if err != nil {
		log.Fatalf("[Main] mail templates: %v", err)
	}
	sender := mail.NewSenderFromEnv()
	log.Infof("[Main] mail transport: %s", sender.Name())
	queue := jobqueue.NewQueue(redisClient, env.GetEnvInt("JOBQUEUE_WORKERS", jobqueue.DefaultWorkers))
	queue.Register(jobqueue.JobTypeSendEmail, jobqueue.NewEmailHandler(mail.NewMailer(sender, renderer)))
	views := counter.NewViewCounter(redisClient, counter.GormStore(db))
	manager := jobqueue.NewManager(queue, views, jobqueue.DefaultCounterFlushInterval)

	// services
	guard := access.NewGuard(repos.User)
	notifier := notify.NewService(repos, queue)
	moderationService := moderation.NewService(repos, guard, notifier)
	statisticsService := statistics.NewService(repos, guard, cache.New(redisClient))
	messagingService := messaging.NewService(repos, notifier)
	avatars := media.NewAvatarService(media.NewStoreFromEnv(ctx, basePath+"uploads"), repos.User)
	sessions := session.NewRedisManager(redisClient)
	oauth.Setup(redisClient)

	auth := controllers.NewAuthController(repos.User, sessions, hcaptcha.NewVerifierFromEnv(), notifier)
	ctrls := &router.Controllers{
		Admin:      controllers.NewAdminController(moderationService, statisticsService),
		AdminQueue: controllers.NewAdminQueueController(guard, queue, repos.Queue),
		Auth:       auth,
		OAuth:      controllers.NewOAuthController(auth, repos.User, env.GetEnv("OAUTH_REDIRECT_URL", "/")),
		Message:    controllers.NewMessageController(messagingService),
		User:       controllers.NewUserController(repos, avatars),
		Listing:    controllers.NewListingController(repos.Listing, views),
	}

	// init fiber app
	app := fiber.New(router.WithProxyConfig(fiber.Config{
		AppName:   appName,
		BodyLimit: 8 * 1024 * 1024,
	}))

	// recovery and logging
	app.Use(recover.New(), logger.New(), metrics.Middleware())

	metricsAuth := basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "change-me"),
		},
	})
	app.Get("/metrics", metricsAuth, metrics.Handler())
	app.Get("/monitor", metricsAuth, monitor.New(monitor.Config{Title: appName + " Monitor"}))

	// static uploads
	app.Static(media.DefaultLocalURLPrefix, basePath+"uploads", fiber.Static{
		CacheDuration: 10 * time.Second,
		Compress:      false,
		MaxAge:        604800, // 7 days
	})

	// SWAGGER / OPENAPI
	app.Use(swagger.New(swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}))

	// ROUTER
	router.InstallRouter(app, sessions, ctrls)

	return app, manager
}
