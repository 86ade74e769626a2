package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/nibiaa/TenantDesk/app/controllers"
	"github.com/nibiaa/TenantDesk/app/repository"
	"github.com/nibiaa/TenantDesk/internal/pkg/billing"
	"github.com/nibiaa/TenantDesk/internal/pkg/constants"
	"github.com/nibiaa/TenantDesk/internal/pkg/metrics/counter"
	"github.com/nibiaa/TenantDesk/internal/pkg/middleware"
	"github.com/nibiaa/TenantDesk/internal/pkg/platform"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group(constants.APIRoute, limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	repos := repository.GetGlobalRepositories()
	billingSvc := billing.NewService(billing.NewClientFromEnv(), repos.Subscription, repos.Project)
	provisionCtrl := controllers.NewProvisionController(repos, billingSvc, platform.NewClientFromEnv())
	staffCtrl := controllers.NewStaffController(repos)

	// API v1 routes
	v1 := api.Group(constants.APIv1Route, middleware.APIKeyAuthMiddleware())
	v1.Get(constants.SubscriptionsRoute, provisionCtrl.HandleListSubscriptions)
	v1.Post(constants.SubscriptionSyncRoute, provisionCtrl.HandleSyncSubscriptions)
	v1.Get(constants.MappingsRoute, provisionCtrl.HandleGetMappings)
	v1.Post(constants.ResolveRoute, provisionCtrl.HandleResolve)
	v1.Post(constants.ProvisionRoute, provisionCtrl.HandleProvision)
	v1.Get(constants.UsersRoute, staffCtrl.HandleListUsers)
	v1.Get(constants.TaskTemplatesRoute, staffCtrl.HandleListTaskTemplates)
	v1.Get(constants.StatsRoute, handleStats)
}

func handleStats(c *fiber.Ctx) error {
	stats, err := counter.Snapshot()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "stats snapshot failed", "message": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"counters": stats})
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
