package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cheatwell/cheatwell-api/internal/config"
	"github.com/cheatwell/cheatwell-api/internal/handler"
	"github.com/cheatwell/cheatwell-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ExecuteHandler        *handler.ExecuteHandler
	ResearchHandler       *handler.ResearchHandler
	HistoryHandler        *handler.HistoryHandler
	DeliveryHandler       *handler.DeliveryHandler
	DownloadHandler       *handler.DownloadHandler
	StudentDetailsHandler *handler.StudentDetailsHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.ExecuteHandler != nil {
		deps.ExecuteHandler.Register(api)
	}
	if deps.ResearchHandler != nil {
		deps.ResearchHandler.Register(api)
	}
	if deps.HistoryHandler != nil {
		deps.HistoryHandler.Register(api)
	}
	if deps.DeliveryHandler != nil {
		deps.DeliveryHandler.Register(api)
	}
	if deps.DownloadHandler != nil {
		deps.DownloadHandler.Register(api)
	}
	if deps.StudentDetailsHandler != nil {
		deps.StudentDetailsHandler.Register(api)
	}

	app.Get("/metrics", observability.MetricsHandler())
}
