package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/soltixdb/cyclix/internal/config"
	"github.com/soltixdb/cyclix/internal/handlers"
	"github.com/soltixdb/cyclix/internal/logging"
	"github.com/soltixdb/cyclix/internal/middleware"
	"github.com/soltixdb/cyclix/internal/pipeline"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, loader pipeline.TableLoader, cfg config.Config) *handlers.Handler {
	h := handlers.New(logger, cfg, loader)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger))

	// Health check (no auth required)
	app.Get("/health", h.Health)

	// API v1 routes (protected by API key)
	v1 := app.Group("/v1", middleware.APIKeyAuth(logger, cfg.Auth))

	v1.Post("/analyses", h.Analyses)
	v1.Post("/transforms", h.Transforms)
	v1.Post("/volatility", h.Volatility)
	v1.Post("/regressions", h.Regressions)
	v1.Post("/var", h.VAR)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, loader pipeline.TableLoader, cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Cyclix API",
		DisableStartupMessage: true,
		BodyLimit:             cfg.Server.BodyLimit,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, loader, cfg)

	return app
}
