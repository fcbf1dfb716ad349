// Package models defines the core domain models for the chat-automation
// workflow builder: the graph document, its typed nodes and edges, and the
// per-kind configuration schemas.
package models

import (
	"fmt"
	"time"
)

// Viewport is the camera state of the builder canvas. It is presentation-only
// but persisted so a user returns to the same view.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// DefaultViewport returns the initial camera for a freshly created document.
func DefaultViewport() Viewport {
	return Viewport{X: 0, Y: 0, Zoom: 1}
}

// GraphDocument is a persisted workflow definition: the automation graph plus
// its activation state and optimistic-concurrency version.
type GraphDocument struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"        validate:"required,min=3"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive"`
	Nodes       []*Node   `json:"nodes"`
	Edges       []*Edge   `json:"edges"`
	Viewport    Viewport  `json:"viewport"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewGraphDocument returns an empty, inactive document with the default
// viewport. The version is assigned by the store on create.
func NewGraphDocument(id, name string) *GraphDocument {
	now := time.Now().UTC()

	return &GraphDocument{
		ID:        id,
		Name:      name,
		Nodes:     make([]*Node, 0),
		Edges:     make([]*Edge, 0),
		Viewport:  DefaultViewport(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NodeByID returns the node with the given id, or nil.
func (d *GraphDocument) NodeByID(id string) *Node {
	for _, node := range d.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}

// EdgeByID returns the edge with the given id, or nil.
func (d *GraphDocument) EdgeByID(id string) *Edge {
	for _, edge := range d.Edges {
		if edge.ID == id {
			return edge
		}
	}

	return nil
}

// HasConnection reports whether an edge with the same
// (source, sourceHandle, target) key already exists.
func (d *GraphDocument) HasConnection(source, sourceHandle, target string) bool {
	for _, edge := range d.Edges {
		if edge.Source == source && edge.Target == target && edge.SourceHandleValue() == sourceHandle {
			return true
		}
	}

	return false
}

// ValidateEdges checks the structural edge invariants: every edge references
// nodes present in the document and no two edges share the same
// (source, sourceHandle, target) key. The mutation API maintains these
// invariants itself; a full save replaces the graph wholesale and must be
// checked before it is persisted.
func (d *GraphDocument) ValidateEdges() error {
	nodes := make(map[string]bool, len(d.Nodes))
	for _, node := range d.Nodes {
		nodes[node.ID] = true
	}

	seen := make(map[string]bool, len(d.Edges))

	for _, edge := range d.Edges {
		if !nodes[edge.Source] {
			return fmt.Errorf("edge %s references missing source node %s", edge.ID, edge.Source)
		}

		if !nodes[edge.Target] {
			return fmt.Errorf("edge %s references missing target node %s", edge.ID, edge.Target)
		}

		key := edge.Source + "\x00" + edge.SourceHandleValue() + "\x00" + edge.Target
		if seen[key] {
			return fmt.Errorf("duplicate connection from %s to %s", edge.Source, edge.Target)
		}

		seen[key] = true
	}

	return nil
}

// TriggerNodes returns the document's trigger nodes in declaration order.
func (d *GraphDocument) TriggerNodes() []*Node {
	triggers := make([]*Node, 0)

	for _, node := range d.Nodes {
		if node.Kind == NodeKindTrigger {
			triggers = append(triggers, node)
		}
	}

	return triggers
}

// Clone returns a deep copy of the document. Node configs are copied through
// their kind-specific Clone so mutations on the copy never alias the original.
func (d *GraphDocument) Clone() *GraphDocument {
	clone := &GraphDocument{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		IsActive:    d.IsActive,
		Viewport:    d.Viewport,
		Version:     d.Version,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		Nodes:       make([]*Node, len(d.Nodes)),
		Edges:       make([]*Edge, len(d.Edges)),
	}

	for i, node := range d.Nodes {
		clone.Nodes[i] = node.Clone()
	}

	for i, edge := range d.Edges {
		clone.Edges[i] = edge.Clone()
	}

	return clone
}
