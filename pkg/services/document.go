package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chatflowhq/chatflow/pkg/eventbus"
	"github.com/chatflowhq/chatflow/pkg/events"
	"github.com/chatflowhq/chatflow/pkg/models"
	"github.com/chatflowhq/chatflow/pkg/otelhelper"
	"github.com/chatflowhq/chatflow/pkg/persistence"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "chatflow.services"

var (
	// ErrDocumentNotFound is returned when a document is not found.
	ErrDocumentNotFound = persistence.ErrDocumentNotFound
)

// Document is the lifecycle service for workflow graph documents. Saves on
// the same service instance are serialized so two concurrent writers resolve
// to a clean version conflict rather than interleaved writes.
type Document struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	logger      *slog.Logger
	tracer      trace.Tracer
	saveMu      sync.Mutex
}

// NewDocument creates a new document service. The event bus may be nil, in
// which case lifecycle events are not emitted.
func NewDocument(store persistence.Persistence, bus eventbus.EventBus, logger *slog.Logger) *Document {
	return &Document{
		persistence: store,
		eventBus:    bus,
		logger:      logger,
		tracer:      otel.Tracer(tracerName),
	}
}

// HealthCheck checks the health of the persistence layer.
func (d *Document) HealthCheck(ctx context.Context) (string, bool) {
	if d.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := d.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List returns all documents.
func (d *Document) List(ctx context.Context) ([]*models.GraphDocument, error) {
	ctx, span := d.tracer.Start(ctx, "documents.list")
	defer span.End()

	documents, err := d.persistence.Documents(ctx)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	span.SetAttributes(attribute.Int(otelhelper.DocumentCountKey, len(documents)))

	return documents, nil
}

// FetchByID retrieves a document by its ID.
func (d *Document) FetchByID(ctx context.Context, id string) (*models.GraphDocument, error) {
	ctx, span := d.tracer.Start(ctx, "documents.fetch",
		trace.WithAttributes(attribute.String(otelhelper.DocumentIDKey, id)))
	defer span.End()

	doc, err := d.persistence.DocumentByID(ctx, id)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	return doc, nil
}

// Create makes a new empty document: no nodes, no edges, the default
// viewport, inactive, at version 1.
func (d *Document) Create(ctx context.Context, name, description string) (*models.GraphDocument, error) {
	ctx, span := d.tracer.Start(ctx, "documents.create")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("Create", "NAME_REQUIRED", "document name is required", ErrDocumentNameRequired)
	}

	doc := models.NewGraphDocument(uuid.New().String(), name)
	doc.Description = description

	span.SetAttributes(attribute.String(otelhelper.DocumentIDKey, doc.ID))

	err := d.persistence.CreateDocument(ctx, doc)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	d.publish(ctx, doc.ID, events.DocumentCreated{
		BaseEvent: d.baseEvent(events.DocumentCreatedEvent, doc.ID),
		Name:      doc.Name,
	})

	return doc, nil
}

// Save persists a document edit. The document's Version field is the
// optimistic-concurrency token from the load that started the edit; a stale
// token surfaces as a version conflict.
func (d *Document) Save(ctx context.Context, doc *models.GraphDocument) (*models.GraphDocument, error) {
	ctx, span := d.tracer.Start(ctx, "documents.save")
	defer span.End()

	if doc == nil {
		return nil, NewValidationError("Save", "DOCUMENT_NIL", "document cannot be nil", ErrDocumentNil)
	}

	span.SetAttributes(attribute.String(otelhelper.DocumentIDKey, doc.ID))

	if strings.TrimSpace(doc.Name) == "" {
		return nil, NewValidationError("Save", "NAME_REQUIRED", "document name is required", ErrDocumentNameRequired)
	}

	if err := doc.ValidateEdges(); err != nil {
		return nil, NewValidationError("Save", "EDGE_INTEGRITY", err.Error(), ErrInvalidGraph)
	}

	d.saveMu.Lock()
	saved, err := d.persistence.SaveDocument(ctx, doc)
	d.saveMu.Unlock()

	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	d.publish(ctx, saved.ID, events.DocumentSaved{
		BaseEvent: d.baseEvent(events.DocumentSavedEvent, saved.ID),
		Version:   saved.Version,
		NodeCount: len(saved.Nodes),
		EdgeCount: len(saved.Edges),
	})

	return saved, nil
}

// Delete removes a document by its ID.
func (d *Document) Delete(ctx context.Context, id string) error {
	ctx, span := d.tracer.Start(ctx, "documents.delete",
		trace.WithAttributes(attribute.String(otelhelper.DocumentIDKey, id)))
	defer span.End()

	err := d.persistence.DeleteDocument(ctx, id)
	if err != nil {
		otelhelper.SetError(span, err)

		return err
	}

	d.publish(ctx, id, events.DocumentDeleted{
		BaseEvent: d.baseEvent(events.DocumentDeletedEvent, id),
	})

	return nil
}

func (d *Document) baseEvent(eventType events.EventType, documentID string) events.BaseEvent {
	return events.BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		DocumentID: documentID,
	}
}

// publish emits a lifecycle event. Event delivery is best effort: a failed
// publish is logged, never surfaced to the caller whose write already landed.
func (d *Document) publish(ctx context.Context, key string, event eventbus.Event) {
	if d.eventBus == nil {
		return
	}

	err := d.eventBus.Publish(ctx, key, event)
	if err != nil {
		d.logger.WarnContext(ctx, "failed to publish lifecycle event",
			"event_type", event.GetType(), "document_id", key, "error", err)
	}
}
