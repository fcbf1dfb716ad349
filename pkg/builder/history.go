package builder

import "github.com/chatflowhq/chatflow/pkg/models"

// DefaultHistoryLimit caps the undo stack. Graphs in this domain are small
// (tens of nodes), so full snapshots at this depth stay cheap.
const DefaultHistoryLimit = 50

// Snapshot is an immutable full copy of the graph's nodes and edges, taken
// after a completed mutation. Snapshots never alias live graph state.
type Snapshot struct {
	Nodes []*models.Node
	Edges []*models.Edge
}

func takeSnapshot(nodes []*models.Node, edges []*models.Edge) Snapshot {
	snapshot := Snapshot{
		Nodes: make([]*models.Node, len(nodes)),
		Edges: make([]*models.Edge, len(edges)),
	}

	for i, node := range nodes {
		snapshot.Nodes[i] = node.Clone()
	}

	for i, edge := range edges {
		snapshot.Edges[i] = edge.Clone()
	}

	return snapshot
}

// restore returns deep copies of the snapshot's contents, so a later mutation
// never writes through into history.
func (s Snapshot) restore() ([]*models.Node, []*models.Edge) {
	nodes := make([]*models.Node, len(s.Nodes))
	edges := make([]*models.Edge, len(s.Edges))

	for i, node := range s.Nodes {
		nodes[i] = node.Clone()
	}

	for i, edge := range s.Edges {
		edges[i] = edge.Clone()
	}

	return nodes, edges
}

// History provides linear undo/redo over a bounded sequence of snapshots.
// It is owned by the Builder and never persisted.
type History struct {
	entries []Snapshot
	cursor  int
	limit   int
}

// NewHistory creates an empty history. A non-positive limit falls back to
// DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	return &History{
		entries: make([]Snapshot, 0, limit),
		cursor:  -1,
		limit:   limit,
	}
}

// Record appends a snapshot after the cursor, discarding any redo entries
// beyond it, and evicts the oldest entry once the limit is reached.
func (h *History) Record(nodes []*models.Node, edges []*models.Edge) {
	h.entries = h.entries[:h.cursor+1]
	h.entries = append(h.entries, takeSnapshot(nodes, edges))

	if len(h.entries) > h.limit {
		h.entries = h.entries[1:]
	}

	h.cursor = len(h.entries) - 1
}

// Undo steps the cursor back and returns the snapshot now pointed to.
// It is a no-op at the oldest entry.
func (h *History) Undo() (Snapshot, bool) {
	if !h.CanUndo() {
		return Snapshot{}, false
	}

	h.cursor--

	return h.entries[h.cursor], true
}

// Redo steps the cursor forward and returns the snapshot now pointed to.
// It is a no-op at the newest entry.
func (h *History) Redo() (Snapshot, bool) {
	if !h.CanRedo() {
		return Snapshot{}, false
	}

	h.cursor++

	return h.entries[h.cursor], true
}

func (h *History) CanUndo() bool {
	return h.cursor > 0
}

func (h *History) CanRedo() bool {
	return h.cursor < len(h.entries)-1
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Cursor returns the index of the active entry, -1 when empty.
func (h *History) Cursor() int {
	return h.cursor
}
