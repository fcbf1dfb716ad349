// Package persistence provides the durable store abstraction for workflow
// graph documents.
package persistence

import (
	"context"

	"github.com/chatflowhq/chatflow/pkg/models"
)

// Persistence is the document store contract. SaveDocument treats the
// document's Version as an optimistic-concurrency token: the save is accepted
// only when it matches the stored version, and the store returns the document
// with the authoritative incremented version. SetActive is a narrow toggle
// that does not bump the version, so activation never requires a full graph
// resubmission.
type Persistence interface {
	Documents(ctx context.Context) ([]*models.GraphDocument, error)
	DocumentByID(ctx context.Context, id string) (*models.GraphDocument, error)
	CreateDocument(ctx context.Context, doc *models.GraphDocument) error
	SaveDocument(ctx context.Context, doc *models.GraphDocument) (*models.GraphDocument, error)
	SetActive(ctx context.Context, id string, active bool) (*models.GraphDocument, error)
	DeleteDocument(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
