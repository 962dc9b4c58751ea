package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/campushire/placement-api/internal/config"
	"github.com/campushire/placement-api/internal/handler"
	"github.com/campushire/placement-api/internal/middleware"
	"github.com/campushire/placement-api/internal/models"
	"github.com/campushire/placement-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	DriveHandler     *handler.DriveHandler
	PlacementHandler *handler.PlacementHandler
	DeletionHandler  *handler.DeletionHandler
	EventsHandler    *handler.EventsHandler
	JWTMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Drives (listings, eligibility, applications, rounds, placements)
	if deps.DriveHandler != nil {
		drives := api.Group("/drives", jwtMiddleware)
		drives.Use("/:id/apply", middleware.RateLimit("drive-apply", 5, time.Minute))
		deps.DriveHandler.Register(drives)

		if deps.PlacementHandler != nil {
			deps.PlacementHandler.Register(drives)
		}
		if deps.DeletionHandler != nil {
			deps.DeletionHandler.RegisterDriveRoutes(drives)
		}

		applications := api.Group("/applications", jwtMiddleware)
		deps.DriveHandler.RegisterApplicationRoutes(applications)
	}

	// Deletion request review surface; students never see it
	if deps.DeletionHandler != nil {
		deletions := api.Group("/deletion-requests", jwtMiddleware,
			middleware.RequireRole(models.RoleOfficer, models.RoleRepresentative))
		deps.DeletionHandler.Register(deletions)
	}

	// Live event stream
	if deps.EventsHandler != nil {
		events := api.Group("/events", jwtMiddleware)
		deps.EventsHandler.Register(events)
	}
}
