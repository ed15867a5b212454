// Package server wires the fiber application: routes, middleware, payload
// validation, and error mapping.
package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/cronoplan/cronoplan-api/internal/auth"
)

// Options configures the HTTP application.
type Options struct {
	AppName     string
	CORSOrigins []string
	Debug       bool
	Logger      auth.Logger
}

// New builds the fiber app with all routes mounted. Listen is left to the
// caller.
func New(auther *auth.Auther, gate *auth.TokenGate, opts Options) *fiber.App {
	logger := opts.Logger
	if logger == nil {
		logger = auth.DefaultLogger()
	}

	app := fiber.New(fiber.Config{
		AppName:      opts.AppName,
		ErrorHandler: ErrorHandler(logger, opts.Debug),
	})

	app.Use(recover.New())

	if len(opts.CORSOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Join(opts.CORSOrigins, ","),
			AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
			AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
			AllowCredentials: true,
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	controller := NewAuthController(auther, gate,
		WithControllerLogger(logger),
		WithControllerDebug(opts.Debug),
	)
	controller.RegisterRoutes(app.Group("/api/v1/auth"))

	return app
}
