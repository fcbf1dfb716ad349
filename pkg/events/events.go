// Package events defines event types for workflow document lifecycle notifications.
package events

import (
	"time"
)

type EventType string

// Topic is the channel for document lifecycle events.
const Topic = "chatflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	DocumentCreatedEvent     EventType = "document.created"
	DocumentSavedEvent       EventType = "document.saved"
	DocumentActivatedEvent   EventType = "document.activated"
	DocumentDeactivatedEvent EventType = "document.deactivated"
	DocumentDeletedEvent     EventType = "document.deleted"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	DocumentID string         `json:"document_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type DocumentCreated struct {
	BaseEvent

	Name string `json:"name"`
}

func (d DocumentCreated) GetType() EventType {
	return DocumentCreatedEvent
}

// DocumentSaved is emitted after a successful optimistic save. Version is the
// authoritative version the store assigned to the write.
type DocumentSaved struct {
	BaseEvent

	Version   int64 `json:"version"`
	NodeCount int   `json:"node_count"`
	EdgeCount int   `json:"edge_count"`
}

func (d DocumentSaved) GetType() EventType {
	return DocumentSavedEvent
}

type DocumentActivated struct {
	BaseEvent

	Version int64 `json:"version"`
}

func (d DocumentActivated) GetType() EventType {
	return DocumentActivatedEvent
}

type DocumentDeactivated struct {
	BaseEvent
}

func (d DocumentDeactivated) GetType() EventType {
	return DocumentDeactivatedEvent
}

type DocumentDeleted struct {
	BaseEvent
}

func (d DocumentDeleted) GetType() EventType {
	return DocumentDeletedEvent
}
