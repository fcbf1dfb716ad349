package postgresql

import (
	"log/slog"
	"os"
	"testing"

	"github.com/chatflowhq/chatflow/pkg/models"
	"github.com/chatflowhq/chatflow/pkg/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPersistence(t *testing.T) *Persistence {
	t.Helper()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_URL not set, skipping postgresql persistence tests")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := NewPersistence(t.Context(), logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = p.Close(t.Context())
	})

	return p
}

func testDocument() *models.GraphDocument {
	doc := models.NewGraphDocument(uuid.New().String(), "Postgres Test Flow")
	trigger := models.NewNode(models.NodeKindTrigger, models.Position{X: 100, Y: 100})
	action := models.NewNode(models.NodeKindAction, models.Position{X: 320, Y: 100})
	doc.Nodes = append(doc.Nodes, trigger, action)
	doc.Edges = append(doc.Edges, models.NewEdge(trigger.ID, action.ID, ""))

	return doc
}

func TestPersistence_RoundTrip(t *testing.T) {
	p := newTestPersistence(t)
	ctx := t.Context()

	doc := testDocument()
	require.NoError(t, p.CreateDocument(ctx, doc))

	t.Cleanup(func() {
		_ = p.DeleteDocument(ctx, doc.ID)
	})

	stored, err := p.DocumentByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, stored.ID)
	assert.EqualValues(t, 1, stored.Version)
	require.Len(t, stored.Nodes, 2)
	assert.Equal(t, models.NodeKindTrigger, stored.Nodes[0].Kind)
	require.Len(t, stored.Edges, 1)
	assert.Nil(t, stored.Edges[0].SourceHandle)
}

func TestPersistence_CreateRejectsDuplicate(t *testing.T) {
	p := newTestPersistence(t)
	ctx := t.Context()

	doc := testDocument()
	require.NoError(t, p.CreateDocument(ctx, doc))

	t.Cleanup(func() {
		_ = p.DeleteDocument(ctx, doc.ID)
	})

	err := p.CreateDocument(ctx, doc)
	assert.True(t, persistence.IsDocumentAlreadyExists(err))
}

func TestPersistence_SaveVersionGuard(t *testing.T) {
	p := newTestPersistence(t)
	ctx := t.Context()

	doc := testDocument()
	require.NoError(t, p.CreateDocument(ctx, doc))

	t.Cleanup(func() {
		_ = p.DeleteDocument(ctx, doc.ID)
	})

	doc.Name = "Renamed Flow"

	updated, err := p.SaveDocument(ctx, doc)
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated.Version)
	assert.Equal(t, "Renamed Flow", updated.Name)

	// Stale token: the first save already moved the stored version past it.
	_, err = p.SaveDocument(ctx, doc)
	assert.True(t, persistence.IsVersionConflict(err))
}

func TestPersistence_SaveMissingDocument(t *testing.T) {
	p := newTestPersistence(t)

	doc := testDocument()
	doc.Version = 1

	_, err := p.SaveDocument(t.Context(), doc)
	assert.True(t, persistence.IsDocumentNotFound(err))
}

func TestPersistence_SetActiveKeepsVersion(t *testing.T) {
	p := newTestPersistence(t)
	ctx := t.Context()

	doc := testDocument()
	require.NoError(t, p.CreateDocument(ctx, doc))

	t.Cleanup(func() {
		_ = p.DeleteDocument(ctx, doc.ID)
	})

	activated, err := p.SetActive(ctx, doc.ID, true)
	require.NoError(t, err)
	assert.True(t, activated.IsActive)
	assert.EqualValues(t, 1, activated.Version)
}

func TestPersistence_DeleteMissing(t *testing.T) {
	p := newTestPersistence(t)

	err := p.DeleteDocument(t.Context(), "missing-"+uuid.New().String())
	assert.True(t, persistence.IsDocumentNotFound(err))
}
