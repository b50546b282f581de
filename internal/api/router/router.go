package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"

	"github.com/bankverify/callsheet/internal/api/handler"
	"github.com/bankverify/callsheet/internal/api/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(callHandler *handler.CallHandler, letterHandler *handler.LetterHandler, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c fiber.Ctx, err error) error {
			// Default error handler
			code := fiber.StatusInternalServerError

			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			return c.Status(code).JSON(fiber.Map{
				"message": "Internal server error",
			})
		},
	})

	// Add global middleware
	app.Use(middleware.RequestLogger(logger))
	app.Use(recover.New())

	// API versioning
	v1 := app.Group("/v1")

	// Identity gate
	v1.Get("/identity", callHandler.GetIdentity)
	v1.Put("/identity", callHandler.SetIdentity)

	// Assignment workflow
	v1.Post("/assignments/next", callHandler.Next)
	v1.Get("/assignments/current", callHandler.Current)
	v1.Post("/assignments/requirements", callHandler.Requirements)
	v1.Post("/assignments/submit", callHandler.Submit)
	v1.Post("/assignments/cancel", callHandler.Cancel)

	// Letter artifacts
	v1.Post("/letters/:id", letterHandler.Generate)
	v1.Post("/letters", letterHandler.GenerateBulk)

	return app
}
