// Package main provides the Chatflow builder API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/chatflowhq/chatflow/pkg/collaborators"
	"github.com/chatflowhq/chatflow/pkg/config"
	"github.com/chatflowhq/chatflow/pkg/eventbus"
	"github.com/chatflowhq/chatflow/pkg/persistence"
	"github.com/chatflowhq/chatflow/pkg/readiness"
	"github.com/chatflowhq/chatflow/pkg/registry"
	"github.com/chatflowhq/chatflow/pkg/services"
	"github.com/chatflowhq/chatflow/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	config      config.BuilderConfig
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *registry.Registry,
	eventBus eventbus.EventBus,
	cfg config.BuilderConfig,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		registry:    registry,
		eventBus:    eventBus,
		config:      cfg,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() (*fiber.App, error) {
	documentService := services.NewDocument(a.persistence, a.eventBus, a.logger)

	readinessValidator, err := readiness.NewValidator()
	if err != nil {
		return nil, err
	}

	activationService := services.NewActivation(a.persistence, readinessValidator, a.eventBus, a.logger)

	handlers := web.NewAPIHandlers(
		documentService,
		activationService,
		a.validate,
		a.registry,
		collaborators.NewMediaUploader(a.config.MediaServiceURL, a.logger),
		collaborators.NewUserDirectory(a.config.UserDirectoryURL, a.logger),
		a.config,
	)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Chatflow API")
	})

	web.RegisterRoutes(app, handlers)

	return app, nil
}

func (a *API) Start(port int) error {
	app, err := a.App()
	if err != nil {
		return err
	}

	return app.Listen(":" + strconv.Itoa(port))
}
