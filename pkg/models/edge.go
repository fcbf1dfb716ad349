package models

import "github.com/google/uuid"

// Logical output handles of a condition node. All other kinds have a single
// implicit output and carry a nil SourceHandle.
const (
	HandleYes = "yes"
	HandleNo  = "no"
)

// Edge is a directed connection between two nodes. SourceHandle discriminates
// which output of the source the edge leaves from; TargetHandle is reserved
// for future multi-input nodes and is always nil today.
type Edge struct {
	ID           string  `json:"id"               validate:"required"`
	Source       string  `json:"source"           validate:"required"`
	Target       string  `json:"target"           validate:"required"`
	SourceHandle *string `json:"sourceHandle,omitempty"`
	TargetHandle *string `json:"targetHandle,omitempty"`
}

// NewEdge creates an edge with a fresh id. sourceHandle may be empty for
// single-output source kinds.
func NewEdge(source, target, sourceHandle string) *Edge {
	edge := &Edge{
		ID:     uuid.New().String(),
		Source: source,
		Target: target,
	}

	if sourceHandle != "" {
		edge.SourceHandle = &sourceHandle
	}

	return edge
}

// SourceHandleValue returns the handle name, or "" when unset.
func (e *Edge) SourceHandleValue() string {
	if e.SourceHandle == nil {
		return ""
	}

	return *e.SourceHandle
}

// Touches reports whether the edge starts or ends at the given node.
func (e *Edge) Touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}

// Clone returns a deep copy of the edge.
func (e *Edge) Clone() *Edge {
	clone := *e

	if e.SourceHandle != nil {
		handle := *e.SourceHandle
		clone.SourceHandle = &handle
	}

	if e.TargetHandle != nil {
		handle := *e.TargetHandle
		clone.TargetHandle = &handle
	}

	return &clone
}
