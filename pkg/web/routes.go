package web

import "github.com/gofiber/fiber/v3"

// RegisterRoutes mounts the builder API on the app.
func RegisterRoutes(app *fiber.App, handlers *APIHandlers) {
	app.Get("/health", handlers.HealthCheck)
	app.Get("/registry/nodes", handlers.GetNodeCatalog)

	app.Get("/users", handlers.GetUsers)
	app.Get("/users/:id", handlers.GetUser)
	app.Post("/media", handlers.UploadMedia)

	d := app.Group("/documents")
	d.Get("/", handlers.GetDocuments)
	d.Post("/", handlers.CreateDocument)
	d.Get("/:id", handlers.GetDocument)
	d.Put("/:id", handlers.SaveDocument)
	d.Delete("/:id", handlers.DeleteDocument)

	d.Get("/:id/readiness", handlers.GetReadiness)
	d.Post("/:id/activate", handlers.ActivateDocument)
	d.Post("/:id/deactivate", handlers.DeactivateDocument)

	d.Post("/:id/nodes", handlers.CreateNode)
	d.Patch("/:id/nodes/:nodeId", handlers.UpdateNodeConfig)
	d.Put("/:id/nodes/:nodeId/position", handlers.MoveNode)
	d.Delete("/:id/nodes/:nodeId", handlers.DeleteNode)

	d.Post("/:id/edges", handlers.CreateEdge)
	d.Delete("/:id/edges/:edgeId", handlers.DeleteEdge)
}
