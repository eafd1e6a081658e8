package api

import (
	"github.com/giverr/giverr/internal/metrics"
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, handler *Handler) {
	registerOperationalRoutes(app, handler)
	registerAPIRoutes(app, handler)
}

func registerOperationalRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/health", handler.Health)
	app.Get("/metrics", metrics.Handler())
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api", handler.AuthRequired)

	auth := api.Group("/auth")
	auth.Get("/user", handler.CurrentUser)
	auth.Post("/sync", handler.SyncProfile)
	auth.Get("/user/audit", handler.AuditCurrentUser)

	users := api.Group("/users")
	users.Get("/search", handler.SearchUsers)
	users.Get("/:id/stats", handler.GetUserStats)
	users.Get("/:id", handler.GetUser)

	stories := api.Group("/gratitude-stories")
	stories.Get("", handler.ListStories)
	stories.Get("/pending", handler.ListPendingStories)
	stories.Get("/user/:id", handler.ListUserStories)
	stories.Post("", handler.CreateStory)
	stories.Patch("/:id/confirm", handler.ConfirmStory)

	connections := api.Group("/connections")
	connections.Get("", handler.ListConnections)
	connections.Post("/import", handler.ImportContacts)
	connections.Post("/import/csv", handler.ImportContactsCSV)
	connections.Post("/import/usernames", handler.ImportUsernames)

	api.Use(handler.NotFound)
}
