package web

import (
	"errors"

	"github.com/chatflowhq/chatflow/pkg/builder"
	"github.com/chatflowhq/chatflow/pkg/persistence"
	"github.com/chatflowhq/chatflow/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func conflict(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(409).
		WithInstance(c.Path()).
		WithType("conflict").
		WithDetail(detail)

	return c.Status(fiber.StatusConflict).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError provides typed error handling for service and builder
// layer errors. Version conflicts map to 409 so the client can reload and
// replay; builder rejections and structural errors are client mistakes (400)
// except missing nodes, which are 404.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, builder.ErrNodeNotFound):
		return notFound(c, "node not found")

	case builder.IsRejection(err) || builder.IsStructural(err):
		return badRequest(c, err.Error())

	case services.IsValidationError(err):
		return badRequest(c, err.Error())

	case persistence.IsVersionConflict(err):
		return conflict(c, "document version conflict: reload and retry")

	case services.IsConflictError(err):
		return conflict(c, err.Error())

	case persistence.IsDocumentNotFound(err):
		return notFound(c, "document not found")

	case persistence.IsDocumentAlreadyExists(err):
		return conflict(c, "document already exists")

	default:
		return internalError(c, err)
	}
}
