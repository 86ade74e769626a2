package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/nibiaa/TenantDesk/app/repository"
	"github.com/nibiaa/TenantDesk/internal/pkg/billing"
	"github.com/nibiaa/TenantDesk/internal/pkg/cache"
	"github.com/nibiaa/TenantDesk/internal/pkg/database"
	"github.com/nibiaa/TenantDesk/internal/pkg/env"
	"github.com/nibiaa/TenantDesk/internal/pkg/jobqueue"
	"github.com/nibiaa/TenantDesk/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	// background workers: notification jobs and the periodic billing sync
	repos := repository.GetGlobalRepositories()
	billingSvc := billing.NewService(billing.NewClientFromEnv(), repos.Subscription, repos.Project)
	manager := jobqueue.GetManager()
	manager.SetSyncFunc(billingSvc.Sync)
	manager.Start()

	// init fiber app
	app := fiber.New(fiber.Config{
		AppName: "TenantDesk",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			"admin": env.GetEnv("METRICS_PASSWORD", "test"),
		},
	}), monitor.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}
