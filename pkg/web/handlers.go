// Package web provides the REST API for the workflow builder: document CRUD,
// graph mutations, readiness checks, and the activation toggle.
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/chatflowhq/chatflow/pkg/builder"
	"github.com/chatflowhq/chatflow/pkg/collaborators"
	"github.com/chatflowhq/chatflow/pkg/config"
	"github.com/chatflowhq/chatflow/pkg/models"
	"github.com/chatflowhq/chatflow/pkg/registry"
	"github.com/chatflowhq/chatflow/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	documentService   *services.Document
	activationService *services.Activation
	validator         *validator.Validate
	registry          *registry.Registry
	mediaUploader     *collaborators.MediaUploader
	userDirectory     *collaborators.UserDirectory
	config            config.BuilderConfig
}

func NewAPIHandlers(
	documentService *services.Document,
	activationService *services.Activation,
	validator *validator.Validate,
	registry *registry.Registry,
	mediaUploader *collaborators.MediaUploader,
	userDirectory *collaborators.UserDirectory,
	cfg config.BuilderConfig,
) *APIHandlers {
	return &APIHandlers{
		documentService:   documentService,
		activationService: activationService,
		validator:         validator,
		registry:          registry,
		mediaUploader:     mediaUploader,
		userDirectory:     userDirectory,
		config:            cfg,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.documentService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Chatflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Chatflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetDocuments(c fiber.Ctx) error {
	documents, err := h.documentService.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"documents":   documents,
		"total_count": len(documents),
	})
}

func (h *APIHandlers) CreateDocument(c fiber.Ctx) error {
	var req CreateDocumentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.documentService.Create(c.Context(), req.Name, req.Description)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) GetDocument(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Document ID is required")
	}

	doc, err := h.documentService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(doc)
}

// SaveDocument replaces the stored graph with the submitted one, guarded by
// the version token the client loaded.
func (h *APIHandlers) SaveDocument(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Document ID is required")
	}

	var req SaveDocumentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	doc, err := h.documentService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	if req.Name != nil {
		doc.Name = *req.Name
	}

	if req.Description != nil {
		doc.Description = *req.Description
	}

	if req.Nodes != nil {
		doc.Nodes = req.Nodes
	}

	if req.Edges != nil {
		doc.Edges = req.Edges
	}

	if req.Viewport != nil {
		doc.Viewport = *req.Viewport
	}

	doc.Version = req.Version

	saved, err := h.documentService.Save(c.Context(), doc)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(saved)
}

func (h *APIHandlers) DeleteDocument(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Document ID is required")
	}

	err := h.documentService.Delete(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetReadiness(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Document ID is required")
	}

	report, err := h.activationService.CheckReadiness(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(report)
}

func (h *APIHandlers) ActivateDocument(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Document ID is required")
	}

	doc, report, err := h.activationService.Activate(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotReady) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"detail":    err.Error(),
				"readiness": report,
			})
		}

		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"document":  doc,
		"readiness": report,
	})
}

func (h *APIHandlers) DeactivateDocument(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Document ID is required")
	}

	doc, err := h.activationService.Deactivate(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(doc)
}

// mutate runs a builder operation against the stored graph and persists the
// result under the caller's version token.
func (h *APIHandlers) mutate(c fiber.Ctx, id string, version int64, op func(b *builder.Builder) error) (*models.GraphDocument, error) {
	doc, err := h.documentService.FetchByID(c.Context(), id)
	if err != nil {
		return nil, err
	}

	doc.Version = version

	b := builder.New(doc, builder.WithHistoryLimit(h.config.HistoryLimit))
	if err := op(b); err != nil {
		return nil, err
	}

	return h.documentService.Save(c.Context(), b.Document())
}

func (h *APIHandlers) CreateNode(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Document ID is required")
	}

	var req CreateNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	kind := models.NodeKind(req.Kind)

	var nodeConfig models.Config

	if len(req.Config) > 0 {
		raw, err := json.Marshal(req.Config)
		if err != nil {
			return badRequest(c, "Invalid node config")
		}

		nodeConfig, err = models.UnmarshalConfig(kind, raw)
		if err != nil {
			return badRequest(c, err.Error())
		}
	}

	var nodeID string

	saved, err := h.mutate(c, id, req.Version, func(b *builder.Builder) error {
		node, err := b.AddNode(kind, req.Position, nodeConfig)
		if err != nil {
			return err
		}

		nodeID = node.ID

		if req.Label != "" {
			return b.UpdateNodeConfig(node.ID, map[string]any{"label": req.Label})
		}

		return nil
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(NodeResponse{
		Node:    saved.NodeByID(nodeID),
		Version: saved.Version,
	})
}

func (h *APIHandlers) UpdateNodeConfig(c fiber.Ctx) error {
	id := c.Params("id")
	nodeID := c.Params("nodeId")

	if id == "" || nodeID == "" {
		return badRequest(c, "Document ID and node ID are required")
	}

	var req UpdateNodeConfigRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	saved, err := h.mutate(c, id, req.Version, func(b *builder.Builder) error {
		return b.UpdateNodeConfig(nodeID, req.Patch)
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(NodeResponse{
		Node:    saved.NodeByID(nodeID),
		Version: saved.Version,
	})
}

func (h *APIHandlers) MoveNode(c fiber.Ctx) error {
	id := c.Params("id")
	nodeID := c.Params("nodeId")

	if id == "" || nodeID == "" {
		return badRequest(c, "Document ID and node ID are required")
	}

	var req MoveNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	grid := h.config.GridSize
	if req.Grid != nil {
		grid = *req.Grid
	}

	saved, err := h.mutate(c, id, req.Version, func(b *builder.Builder) error {
		return b.MoveNode(nodeID, req.Position, grid)
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(NodeResponse{
		Node:    saved.NodeByID(nodeID),
		Version: saved.Version,
	})
}

func (h *APIHandlers) DeleteNode(c fiber.Ctx) error {
	id := c.Params("id")
	nodeID := c.Params("nodeId")

	if id == "" || nodeID == "" {
		return badRequest(c, "Document ID and node ID are required")
	}

	var req VersionedRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	saved, err := h.mutate(c, id, req.Version, func(b *builder.Builder) error {
		b.RemoveNode(nodeID)

		return nil
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(saved)
}

func (h *APIHandlers) CreateEdge(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Document ID is required")
	}

	var req CreateEdgeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	var edgeID string

	saved, err := h.mutate(c, id, req.Version, func(b *builder.Builder) error {
		edge, err := b.Connect(req.Source, req.Target, req.SourceHandle)
		if err != nil {
			return err
		}

		edgeID = edge.ID

		return nil
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(EdgeResponse{
		Edge:    saved.EdgeByID(edgeID),
		Version: saved.Version,
	})
}

func (h *APIHandlers) DeleteEdge(c fiber.Ctx) error {
	id := c.Params("id")
	edgeID := c.Params("edgeId")

	if id == "" || edgeID == "" {
		return badRequest(c, "Document ID and edge ID are required")
	}

	var req VersionedRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	saved, err := h.mutate(c, id, req.Version, func(b *builder.Builder) error {
		b.Disconnect(edgeID)

		return nil
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(saved)
}

func (h *APIHandlers) GetNodeCatalog(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"nodes": h.registry.Components(),
	})
}

func (h *APIHandlers) GetUsers(c fiber.Ctx) error {
	users, err := h.userDirectory.Users(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(users)
}

func (h *APIHandlers) GetUser(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "User ID is required")
	}

	user, err := h.userDirectory.UserByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, collaborators.ErrUserNotFound) {
			return notFound(c, "user not found")
		}

		return internalError(c, err)
	}

	return c.JSON(user)
}

func (h *APIHandlers) UploadMedia(c fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "multipart field 'file' is required")
	}

	content, err := header.Open()
	if err != nil {
		return badRequest(c, "failed to open uploaded file")
	}

	defer func() { _ = content.Close() }()

	media, err := h.mediaUploader.Upload(c.Context(), header.Filename, c.FormValue("mediaType"), content)
	if err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(media)
}
