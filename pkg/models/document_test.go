package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestDocument() *GraphDocument {
	yes := HandleYes

	return &GraphDocument{
		ID:          "doc-1",
		Name:        "Welcome flow",
		Description: "Greets new contacts",
		Version:     3,
		Viewport:    Viewport{X: 12.5, Y: -4, Zoom: 0.8},
		Nodes: []*Node{
			{ID: "trigger-1-a", Kind: NodeKindTrigger, Config: &TriggerConfig{Keywords: []string{"hi"}}},
			{ID: "condition-2-b", Kind: NodeKindCondition, Config: &ConditionConfig{
				ConditionType:  ConditionTypeEquals,
				ConditionValue: "start",
			}},
			{ID: "action-3-c", Kind: NodeKindAction, Config: &ActionConfig{
				ActionType: ActionTypeSendMessage,
				Message:    "Welcome!",
			}},
		},
		Edges: []*Edge{
			{ID: "e1", Source: "trigger-1-a", Target: "condition-2-b"},
			{ID: "e2", Source: "condition-2-b", Target: "action-3-c", SourceHandle: &yes},
		},
	}
}

func TestGraphDocument_Lookups(t *testing.T) {
	t.Parallel()

	doc := buildTestDocument()

	require.NotNil(t, doc.NodeByID("condition-2-b"))
	assert.Nil(t, doc.NodeByID("missing"))

	require.NotNil(t, doc.EdgeByID("e2"))
	assert.Nil(t, doc.EdgeByID("missing"))

	assert.True(t, doc.HasConnection("condition-2-b", HandleYes, "action-3-c"))
	assert.False(t, doc.HasConnection("condition-2-b", HandleNo, "action-3-c"))
	assert.True(t, doc.HasConnection("trigger-1-a", "", "condition-2-b"))

	triggers := doc.TriggerNodes()
	require.Len(t, triggers, 1)
	assert.Equal(t, "trigger-1-a", triggers[0].ID)
}

func TestGraphDocument_ValidateEdges(t *testing.T) {
	t.Parallel()

	doc := buildTestDocument()
	require.NoError(t, doc.ValidateEdges())

	dangling := buildTestDocument()
	dangling.Edges = append(dangling.Edges, NewEdge("trigger-1-a", "ghost", ""))
	err := dangling.ValidateEdges()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing target node ghost")

	orphanSource := buildTestDocument()
	orphanSource.Edges = append(orphanSource.Edges, NewEdge("ghost", "action-3-c", ""))
	err = orphanSource.ValidateEdges()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing source node ghost")

	duplicated := buildTestDocument()
	duplicated.Edges = append(duplicated.Edges, NewEdge("trigger-1-a", "condition-2-b", ""))
	err = duplicated.ValidateEdges()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate connection")
}

func TestGraphDocument_Clone_IsDeep(t *testing.T) {
	t.Parallel()

	doc := buildTestDocument()
	clone := doc.Clone()

	require.Equal(t, doc, clone)

	clone.Nodes[0].Config.(*TriggerConfig).Keywords[0] = "changed"
	clone.Edges[1].Target = "elsewhere"
	*clone.Edges[1].SourceHandle = HandleNo

	assert.Equal(t, "hi", doc.Nodes[0].Config.(*TriggerConfig).Keywords[0])
	assert.Equal(t, "action-3-c", doc.Edges[1].Target)
	assert.Equal(t, HandleYes, *doc.Edges[1].SourceHandle)
}

func TestGraphDocument_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	doc := buildTestDocument()

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var decoded GraphDocument
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, doc.Nodes, decoded.Nodes)
	assert.Equal(t, doc.Edges, decoded.Edges)
	assert.Equal(t, doc.Viewport, decoded.Viewport)
	assert.Equal(t, doc.Version, decoded.Version)
}

func TestEdge_Helpers(t *testing.T) {
	t.Parallel()

	edge := NewEdge("a", "b", HandleNo)
	assert.NotEmpty(t, edge.ID)
	assert.Equal(t, HandleNo, edge.SourceHandleValue())
	assert.True(t, edge.Touches("a"))
	assert.True(t, edge.Touches("b"))
	assert.False(t, edge.Touches("c"))

	plain := NewEdge("a", "b", "")
	assert.Nil(t, plain.SourceHandle)
	assert.Empty(t, plain.SourceHandleValue())
}

func TestConfigSchema_CoversEveryKind(t *testing.T) {
	t.Parallel()

	for _, kind := range NodeKinds() {
		schema := ConfigSchema(kind)
		require.NotNil(t, schema, "no schema for kind %s", kind)
		assert.Equal(t, "object", schema.Type)
	}

	assert.Nil(t, ConfigSchema(NodeKind("teleport")))
}
