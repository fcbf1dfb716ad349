// Package builder is the editing engine for workflow graph documents: the
// mutation API, the connection rules, and snapshot-based undo/redo. It is the
// sole entry point for graph state change. A Builder belongs to one editing
// session and is not safe for concurrent use.
package builder

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/chatflowhq/chatflow/pkg/models"
)

// Builder wraps a GraphDocument and applies atomic mutations to it. Every
// successful mutation records exactly one history entry and marks the
// document dirty; failed mutations never touch history.
type Builder struct {
	doc     *models.GraphDocument
	history *History
	dirty   bool
}

// Option configures a Builder.
type Option func(*options)

type options struct {
	historyLimit int
}

// WithHistoryLimit bounds the undo depth.
func WithHistoryLimit(limit int) Option {
	return func(o *options) {
		o.historyLimit = limit
	}
}

// New creates a builder over the given document and records the document's
// current graph as the history baseline.
func New(doc *models.GraphDocument, opts ...Option) *Builder {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	b := &Builder{
		doc:     doc,
		history: NewHistory(o.historyLimit),
	}

	b.history.Record(doc.Nodes, doc.Edges)

	return b
}

// Document returns the document under edit.
func (b *Builder) Document() *models.GraphDocument {
	return b.doc
}

// Dirty reports whether the graph changed since the last MarkClean.
func (b *Builder) Dirty() bool {
	return b.dirty
}

// MarkClean clears the dirty flag, typically after a successful save.
func (b *Builder) MarkClean() {
	b.dirty = false
}

// History exposes the undo/redo state for UI affordances (button enablement).
func (b *Builder) History() *History {
	return b.history
}

// commit records the post-mutation graph and marks the document dirty.
func (b *Builder) commit() {
	b.history.Record(b.doc.Nodes, b.doc.Edges)
	b.dirty = true
}

// AddNode inserts a node of the given kind at the given position. A nil
// config gets the kind's default; a supplied config must match the kind.
func (b *Builder) AddNode(kind models.NodeKind, position models.Position, config models.Config) (*models.Node, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	if config != nil && config.Kind() != kind {
		return nil, fmt.Errorf("%w: %s config on %s node", ErrConfigKindMismatch, config.Kind(), kind)
	}

	node := models.NewNode(kind, position)
	if config != nil {
		node.Config = config.Clone()
	}

	b.doc.Nodes = append(b.doc.Nodes, node)
	b.commit()

	return node, nil
}

// RemoveNode removes the node and every edge touching it. Removal is
// idempotent: an absent id is a no-op and records no history.
func (b *Builder) RemoveNode(nodeID string) {
	if b.doc.NodeByID(nodeID) == nil {
		return
	}

	nodes := b.doc.Nodes[:0]

	for _, node := range b.doc.Nodes {
		if node.ID != nodeID {
			nodes = append(nodes, node)
		}
	}

	b.doc.Nodes = nodes

	edges := b.doc.Edges[:0]

	for _, edge := range b.doc.Edges {
		if !edge.Touches(nodeID) {
			edges = append(edges, edge)
		}
	}

	b.doc.Edges = edges
	b.commit()
}

// UpdateNodeConfig shallow-merges the patch into the node's config. The
// reserved "label" key updates the node label instead; a nil value deletes
// the config key. The merged result must still decode as the node kind's
// config, so unknown fields are rejected rather than silently stored.
func (b *Builder) UpdateNodeConfig(nodeID string, patch map[string]any) error {
	node := b.doc.NodeByID(nodeID)
	if node == nil {
		return &MutationError{Op: "UpdateNodeConfig", NodeID: nodeID, Err: ErrNodeNotFound}
	}

	raw, err := json.Marshal(node.Config)
	if err != nil {
		return fmt.Errorf("failed to serialize config for node %s: %w", nodeID, err)
	}

	merged := make(map[string]any)
	if err := json.Unmarshal(raw, &merged); err != nil {
		return fmt.Errorf("failed to decode config for node %s: %w", nodeID, err)
	}

	label := node.Label

	for key, value := range patch {
		if key == "label" {
			text, ok := value.(string)
			if !ok {
				return &MutationError{Op: "UpdateNodeConfig", NodeID: nodeID, Err: ErrInvalidPatch}
			}

			label = text

			continue
		}

		if value == nil {
			delete(merged, key)

			continue
		}

		merged[key] = value
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("failed to serialize patched config for node %s: %w", nodeID, err)
	}

	config, err := models.UnmarshalConfig(node.Kind, data)
	if err != nil {
		return &MutationError{Op: "UpdateNodeConfig", NodeID: nodeID, Err: fmt.Errorf("%w: %w", ErrInvalidPatch, err)}
	}

	node.Config = config
	node.Label = label
	b.commit()

	return nil
}

// MoveNode updates a node's position. A positive grid snaps both axes to the
// nearest multiple before storing; this is the one place continuous drag
// coordinates are discretized.
func (b *Builder) MoveNode(nodeID string, position models.Position, grid int) error {
	node := b.doc.NodeByID(nodeID)
	if node == nil {
		return &MutationError{Op: "MoveNode", NodeID: nodeID, Err: ErrNodeNotFound}
	}

	if grid > 0 {
		step := float64(grid)
		position.X = math.Round(position.X/step) * step
		position.Y = math.Round(position.Y/step) * step
	}

	node.Position = position
	b.commit()

	return nil
}

// Connect creates an edge from source to target after consulting the
// connection rules. Rejections come back as typed errors (IsRejection) so the
// caller can surface feedback instead of aborting.
func (b *Builder) Connect(source, target, sourceHandle string) (*models.Edge, error) {
	handle, err := resolveConnection(b.doc, source, target, sourceHandle)
	if err != nil {
		return nil, err
	}

	edge := models.NewEdge(source, target, handle)
	b.doc.Edges = append(b.doc.Edges, edge)
	b.commit()

	return edge, nil
}

// Disconnect removes a single edge. An absent id is a no-op.
func (b *Builder) Disconnect(edgeID string) {
	if b.doc.EdgeByID(edgeID) == nil {
		return
	}

	edges := b.doc.Edges[:0]

	for _, edge := range b.doc.Edges {
		if edge.ID != edgeID {
			edges = append(edges, edge)
		}
	}

	b.doc.Edges = edges
	b.commit()
}

// Undo restores the previous snapshot. It reports false when there is nothing
// to undo.
func (b *Builder) Undo() bool {
	snapshot, ok := b.history.Undo()
	if !ok {
		return false
	}

	b.doc.Nodes, b.doc.Edges = snapshot.restore()
	b.dirty = true

	return true
}

// Redo restores the snapshot that was undone. It reports false when there is
// nothing to redo.
func (b *Builder) Redo() bool {
	snapshot, ok := b.history.Redo()
	if !ok {
		return false
	}

	b.doc.Nodes, b.doc.Edges = snapshot.restore()
	b.dirty = true

	return true
}
