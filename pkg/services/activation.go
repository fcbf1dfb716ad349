package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chatflowhq/chatflow/pkg/eventbus"
	"github.com/chatflowhq/chatflow/pkg/events"
	"github.com/chatflowhq/chatflow/pkg/models"
	"github.com/chatflowhq/chatflow/pkg/otelhelper"
	"github.com/chatflowhq/chatflow/pkg/persistence"
	"github.com/chatflowhq/chatflow/pkg/readiness"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Activation gates the activation toggle behind the readiness check: a
// document with hard readiness failures cannot go live. Warnings never block.
type Activation struct {
	persistence persistence.Persistence
	validator   *readiness.Validator
	eventBus    eventbus.EventBus
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewActivation creates a new activation service.
func NewActivation(store persistence.Persistence, validator *readiness.Validator, bus eventbus.EventBus, logger *slog.Logger) *Activation {
	return &Activation{
		persistence: store,
		validator:   validator,
		eventBus:    bus,
		logger:      logger,
		tracer:      otel.Tracer(tracerName),
	}
}

// CheckReadiness runs the readiness validation for a stored document.
func (a *Activation) CheckReadiness(ctx context.Context, id string) (*readiness.Report, error) {
	doc, err := a.persistence.DocumentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return a.validator.Check(doc)
}

// Activate turns a document live. Activation does not bump the document
// version: it is a flag flip, not a graph edit.
func (a *Activation) Activate(ctx context.Context, id string) (*models.GraphDocument, *readiness.Report, error) {
	ctx, span := a.tracer.Start(ctx, "documents.activate",
		trace.WithAttributes(attribute.String(otelhelper.DocumentIDKey, id)))
	defer span.End()

	doc, err := a.persistence.DocumentByID(ctx, id)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, nil, err
	}

	report, err := a.validator.Check(doc)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, nil, fmt.Errorf("failed to run readiness check: %w", err)
	}

	if !report.Ready() {
		err := NewValidationError("Activate", "NOT_READY",
			fmt.Sprintf("document has %d readiness failures", len(report.Failures)), ErrNotReady)
		otelhelper.SetError(span, err)

		return nil, report, err
	}

	activated, err := a.persistence.SetActive(ctx, id, true)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, report, err
	}

	a.publish(ctx, id, events.DocumentActivated{
		BaseEvent: a.baseEvent(events.DocumentActivatedEvent, id),
		Version:   activated.Version,
	})

	return activated, report, nil
}

// Deactivate takes a document offline. No readiness requirement applies.
func (a *Activation) Deactivate(ctx context.Context, id string) (*models.GraphDocument, error) {
	ctx, span := a.tracer.Start(ctx, "documents.deactivate",
		trace.WithAttributes(attribute.String(otelhelper.DocumentIDKey, id)))
	defer span.End()

	doc, err := a.persistence.SetActive(ctx, id, false)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	a.publish(ctx, id, events.DocumentDeactivated{
		BaseEvent: a.baseEvent(events.DocumentDeactivatedEvent, id),
	})

	return doc, nil
}

func (a *Activation) baseEvent(eventType events.EventType, documentID string) events.BaseEvent {
	return events.BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		DocumentID: documentID,
	}
}

func (a *Activation) publish(ctx context.Context, key string, event eventbus.Event) {
	if a.eventBus == nil {
		return
	}

	err := a.eventBus.Publish(ctx, key, event)
	if err != nil {
		a.logger.WarnContext(ctx, "failed to publish lifecycle event",
			"event_type", event.GetType(), "document_id", key, "error", err)
	}
}
