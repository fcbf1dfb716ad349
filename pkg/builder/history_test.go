package builder

import (
	"fmt"
	"testing"

	"github.com/chatflowhq/chatflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodesNamed(ids ...string) []*models.Node {
	nodes := make([]*models.Node, len(ids))
	for i, id := range ids {
		nodes[i] = &models.Node{ID: id, Kind: models.NodeKindAction, Config: &models.ActionConfig{}}
	}

	return nodes
}

func TestHistory_StartsEmpty(t *testing.T) {
	t.Parallel()

	h := NewHistory(0)
	assert.Equal(t, -1, h.Cursor())
	assert.Equal(t, 0, h.Len())
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())

	_, ok := h.Undo()
	assert.False(t, ok)
	_, ok = h.Redo()
	assert.False(t, ok)
}

func TestHistory_RecordAdvancesCursor(t *testing.T) {
	t.Parallel()

	h := NewHistory(0)
	h.Record(nodesNamed("a"), nil)
	h.Record(nodesNamed("a", "b"), nil)

	assert.Equal(t, 2, h.Len())
	assert.Equal(t, 1, h.Cursor())
	assert.True(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}

func TestHistory_UndoRedoInverse(t *testing.T) {
	t.Parallel()

	h := NewHistory(0)
	h.Record(nodesNamed("a"), nil)
	h.Record(nodesNamed("a", "b"), nil)

	undone, ok := h.Undo()
	require.True(t, ok)
	require.Len(t, undone.Nodes, 1)
	assert.Equal(t, "a", undone.Nodes[0].ID)

	redone, ok := h.Redo()
	require.True(t, ok)
	require.Len(t, redone.Nodes, 2)

	// redo(undo(S)) = S and undo(redo(S)) = S wherever both are valid.
	again, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, undone.Nodes, again.Nodes)
}

func TestHistory_RecordAfterUndoTruncatesRedo(t *testing.T) {
	t.Parallel()

	h := NewHistory(0)
	h.Record(nodesNamed("a"), nil)
	h.Record(nodesNamed("a", "b"), nil)
	h.Record(nodesNamed("a", "b", "c"), nil)

	_, ok := h.Undo()
	require.True(t, ok)
	_, ok = h.Undo()
	require.True(t, ok)

	h.Record(nodesNamed("a", "x"), nil)

	assert.Equal(t, 2, h.Len())
	assert.False(t, h.CanRedo())
	assert.Equal(t, 1, h.Cursor())
}

func TestHistory_EvictsOldestPastLimit(t *testing.T) {
	t.Parallel()

	h := NewHistory(3)

	for i := range 5 {
		h.Record(nodesNamed(fmt.Sprintf("n%d", i)), nil)
	}

	assert.Equal(t, 3, h.Len())

	// Undo to the oldest surviving entry: n2.
	_, ok := h.Undo()
	require.True(t, ok)
	oldest, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, "n2", oldest.Nodes[0].ID)
	assert.False(t, h.CanUndo(), "entries before the cap are gone")
}

func TestHistory_SnapshotsAreDeepCopies(t *testing.T) {
	t.Parallel()

	yes := models.HandleYes
	nodes := nodesNamed("a", "b")
	edges := []*models.Edge{{ID: "e1", Source: "a", Target: "b", SourceHandle: &yes}}

	h := NewHistory(0)
	h.Record(nodes, edges)

	nodes[0].Label = "mutated"
	*edges[0].SourceHandle = models.HandleNo

	h.Record(nodes, edges)

	snapshot, ok := h.Undo()
	require.True(t, ok)
	assert.Empty(t, snapshot.Nodes[0].Label)
	assert.Equal(t, models.HandleYes, *snapshot.Edges[0].SourceHandle)
}
