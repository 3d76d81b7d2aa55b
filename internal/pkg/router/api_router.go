package router

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberredis "github.com/gofiber/storage/redis"

	"github.com/investflow/investflow/app/controllers"
	"github.com/investflow/investflow/app/repository"
	"github.com/investflow/investflow/internal/pkg/database"
	"github.com/investflow/investflow/internal/pkg/env"
	"github.com/investflow/investflow/internal/pkg/middleware"
	"github.com/investflow/investflow/internal/pkg/payments"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	db := database.GetDB()
	repository.InitializeFactory(db)
	repos := repository.GetGlobalRepositories()

	webhookCtl := controllers.NewWebhookController(
		payments.NewServiceFromDB(db),
		repos.WebhookEvent,
		env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
	)

	// The webhook route is registered first and outside the rate-limited API
	// group: signature verification needs the exact raw body, and provider
	// deliveries must never be throttled.
	app.Post("/api/webhooks/stripe", webhookCtl.HandleStripeWebhook)

	authCtl := controllers.NewAuthController(repos.User)
	userCtl := controllers.NewUserController(repos.User)

	api := app.Group("/api", limiter.New(limiter.Config{Storage: newLimiterStorage()}))
	api.Post("/auth/login", authCtl.HandleLogin)

	users := api.Group("/users", middleware.RequireAuth, middleware.RequireAdmin)
	users.Get("/stats", userCtl.HandleGetUserStats)
	users.Get("/", userCtl.HandleGetAllUsers)
	users.Get("/:id", userCtl.HandleGetUserByID)
	users.Delete("/:id", userCtl.HandleDeleteUser)

	hooks := api.Group("/webhooks", middleware.RequireAuth, middleware.RequireAdmin)
	hooks.Get("/events/failed", webhookCtl.HandleListFailedEvents)
}

func newLimiterStorage() fiber.Storage {
	port, err := strconv.Atoi(env.GetEnv("CACHE_PORT", "6379"))
	if err != nil {
		port = 6379
	}
	return fiberredis.New(fiberredis.Config{
		Host:     env.GetEnv("CACHE_HOST", "localhost"),
		Port:     port,
		Password: env.GetEnv("CACHE_PASSWORD", ""),
	})
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
