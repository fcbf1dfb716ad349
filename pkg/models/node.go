package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NodeKind is the closed set of step types a workflow graph may contain.
// Every consumer (builder, validator, serializer) switches on it exhaustively.
type NodeKind string

const (
	NodeKindTrigger   NodeKind = "trigger"
	NodeKindCondition NodeKind = "condition"
	NodeKindAction    NodeKind = "action"
	NodeKindDelay     NodeKind = "delay"
	NodeKindWebhook   NodeKind = "webhook"
)

// NodeKinds lists every kind, in palette order.
func NodeKinds() []NodeKind {
	return []NodeKind{NodeKindTrigger, NodeKindCondition, NodeKindAction, NodeKindDelay, NodeKindWebhook}
}

// Valid reports whether the kind is one of the known node kinds.
func (k NodeKind) Valid() bool {
	switch k {
	case NodeKindTrigger, NodeKindCondition, NodeKindAction, NodeKindDelay, NodeKindWebhook:
		return true
	default:
		return false
	}
}

// Position is a 2D canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a single step in the automation graph.
type Node struct {
	ID       string   `json:"id"       validate:"required"`
	Kind     NodeKind `json:"kind"     validate:"required"`
	Position Position `json:"position"`
	Label    string   `json:"label,omitempty"`
	Config   Config   `json:"config"`
}

// NewNodeID allocates a collision-resistant node id from the kind, the
// current timestamp and a random suffix.
func NewNodeID(kind NodeKind) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]

	return fmt.Sprintf("%s-%d-%s", kind, time.Now().UnixMilli(), suffix)
}

// NewNode creates a node of the given kind with a fresh id and the kind's
// default (empty) configuration.
func NewNode(kind NodeKind, position Position) *Node {
	return &Node{
		ID:       NewNodeID(kind),
		Kind:     kind,
		Position: position,
		Config:   DefaultConfig(kind),
	}
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	clone := *n
	if n.Config != nil {
		clone.Config = n.Config.Clone()
	}

	return &clone
}

// UnmarshalJSON decodes the node and dispatches its config into the concrete
// type for the node's kind.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       string          `json:"id"`
		Kind     NodeKind        `json:"kind"`
		Position Position        `json:"position"`
		Label    string          `json:"label"`
		Config   json.RawMessage `json:"config"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode node: %w", err)
	}

	config, err := UnmarshalConfig(raw.Kind, raw.Config)
	if err != nil {
		return fmt.Errorf("failed to decode config for node %s: %w", raw.ID, err)
	}

	n.ID = raw.ID
	n.Kind = raw.Kind
	n.Position = raw.Position
	n.Label = raw.Label
	n.Config = config

	return nil
}
