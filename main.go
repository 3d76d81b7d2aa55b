package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/investflow/investflow/app/repository"
	"github.com/investflow/investflow/internal/pkg/cache"
	"github.com/investflow/investflow/internal/pkg/database"
	"github.com/investflow/investflow/internal/pkg/env"
	"github.com/investflow/investflow/internal/pkg/router"
	"github.com/investflow/investflow/internal/pkg/scheduler"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()

	if env.GetEnv("STRIPE_WEBHOOK_SECRET", "") == "" {
		log.Fatal("STRIPE_WEBHOOK_SECRET is required")
	}

	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New(), logger.New())

	router.InstallRouter(app)

	scheduler.GetManager().Start()

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
	})
}
