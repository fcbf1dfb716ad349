// Package web provides HTTP request and response types for the builder API.
package web

import "github.com/chatflowhq/chatflow/pkg/models"

// CreateDocumentRequest represents the request body for creating a new document.
type CreateDocumentRequest struct {
	Name        string `json:"name"        validate:"required,min=3"`
	Description string `json:"description"`
}

// SaveDocumentRequest represents a full graph save. Version is the
// optimistic-concurrency token from the load that started the editing session.
type SaveDocumentRequest struct {
	Name        *string          `json:"name,omitempty"        validate:"omitempty,min=3"`
	Description *string          `json:"description,omitempty"`
	Nodes       []*models.Node   `json:"nodes"`
	Edges       []*models.Edge   `json:"edges"`
	Viewport    *models.Viewport `json:"viewport,omitempty"`
	Version     int64            `json:"version"               validate:"required,min=1"`
}

// CreateNodeRequest represents the request body for adding a node.
type CreateNodeRequest struct {
	Kind     string          `json:"kind"     validate:"required,oneof=trigger condition action delay webhook"`
	Position models.Position `json:"position"`
	Label    string          `json:"label"`
	Config   map[string]any  `json:"config"`
	Version  int64           `json:"version"  validate:"required,min=1"`
}

// UpdateNodeConfigRequest carries a shallow config patch. A null value
// removes the key; the "label" key updates the node label.
type UpdateNodeConfigRequest struct {
	Patch   map[string]any `json:"patch"   validate:"required"`
	Version int64          `json:"version" validate:"required,min=1"`
}

// MoveNodeRequest repositions a node. Grid overrides the configured snap
// grid; an explicit zero disables snapping for this move.
type MoveNodeRequest struct {
	Position models.Position `json:"position"`
	Grid     *int            `json:"grid,omitempty" validate:"omitempty,min=0"`
	Version  int64           `json:"version"        validate:"required,min=1"`
}

// CreateEdgeRequest represents the request body for connecting two nodes.
type CreateEdgeRequest struct {
	Source       string `json:"source"       validate:"required"`
	Target       string `json:"target"       validate:"required"`
	SourceHandle string `json:"sourceHandle"`
	Version      int64  `json:"version"      validate:"required,min=1"`
}

// VersionedRequest carries only the concurrency token, for mutations whose
// parameters live in the path.
type VersionedRequest struct {
	Version int64 `json:"version" validate:"required,min=1"`
}

// NodeResponse pairs a created node with the document version that now
// contains it.
type NodeResponse struct {
	Node    *models.Node `json:"node"`
	Version int64        `json:"version"`
}

// EdgeResponse pairs a created edge with the document version that now
// contains it.
type EdgeResponse struct {
	Edge    *models.Edge `json:"edge"`
	Version int64        `json:"version"`
}
