package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/chatflowhq/chatflow/pkg/collaborators"
	"github.com/chatflowhq/chatflow/pkg/config"
	"github.com/chatflowhq/chatflow/pkg/models"
	"github.com/chatflowhq/chatflow/pkg/persistence/file"
	"github.com/chatflowhq/chatflow/pkg/readiness"
	"github.com/chatflowhq/chatflow/pkg/registry"
	"github.com/chatflowhq/chatflow/pkg/services"
	"github.com/chatflowhq/chatflow/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func setupTestApp(t *testing.T, directoryURL string) (*fiber.App, *services.Document) {
	t.Helper()

	logger := testLogger()
	store := file.NewPersistence(t.TempDir())
	documentService := services.NewDocument(store, nil, logger)

	validator := validator.New(validator.WithRequiredStructEnabled())

	readinessValidator, err := readiness.NewValidator()
	require.NoError(t, err)

	activationService := services.NewActivation(store, readinessValidator, nil, logger)

	registryInstance := registry.NewRegistry(logger)
	registryInstance.RegisterDefaultNodes()

	handlers := web.NewAPIHandlers(
		documentService,
		activationService,
		validator,
		registryInstance,
		collaborators.NewMediaUploader(directoryURL, logger),
		collaborators.NewUserDirectory(directoryURL, logger),
		config.DefaultBuilderConfig(),
	)

	app := fiber.New()
	web.RegisterRoutes(app, handlers)

	return app, documentService
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload any) *http.Response {
	t.Helper()

	var body []byte

	switch v := payload.(type) {
	case nil:
	case string:
		body = []byte(v)
	default:
		var err error

		body, err = json.Marshal(payload)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func decodeDocument(t *testing.T, resp *http.Response) *models.GraphDocument {
	t.Helper()

	defer func() { _ = resp.Body.Close() }()

	var doc models.GraphDocument
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))

	return &doc
}

func createDocument(t *testing.T, app *fiber.App, name string) *models.GraphDocument {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/documents", web.CreateDocumentRequest{Name: name})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	return decodeDocument(t, resp)
}

func TestAPIHandlers_CreateDocument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		requestBody    any
		expectedStatus int
	}{
		{
			name:           "successful creation",
			requestBody:    web.CreateDocumentRequest{Name: "Welcome Flow", Description: "greets contacts"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing name",
			requestBody:    web.CreateDocumentRequest{Description: "no name"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "name too short",
			requestBody:    web.CreateDocumentRequest{Name: "ab"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			requestBody:    "not-json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, _ := setupTestApp(t, "http://127.0.0.1:0")

			resp := doJSON(t, app, http.MethodPost, "/documents", tt.requestBody)

			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusCreated {
				doc := decodeDocument(t, resp)
				assert.Equal(t, "Welcome Flow", doc.Name)
				assert.False(t, doc.IsActive)
				assert.EqualValues(t, 1, doc.Version)
				assert.Empty(t, doc.Nodes)
			}
		})
	}
}

func TestAPIHandlers_GetDocumentNotFound(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t, "http://127.0.0.1:0")

	resp := doJSON(t, app, http.MethodGet, "/documents/missing", nil)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_SaveDocumentVersionGuard(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t, "http://127.0.0.1:0")
	doc := createDocument(t, app, "Guarded Flow")

	name := "Renamed Flow"

	resp := doJSON(t, app, http.MethodPut, "/documents/"+doc.ID, web.SaveDocumentRequest{
		Name:    &name,
		Version: doc.Version,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	saved := decodeDocument(t, resp)
	assert.EqualValues(t, 2, saved.Version)
	assert.Equal(t, "Renamed Flow", saved.Name)

	// Replaying the same token must conflict.
	resp = doJSON(t, app, http.MethodPut, "/documents/"+doc.ID, web.SaveDocumentRequest{
		Name:    &name,
		Version: doc.Version,
	})

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPIHandlers_SaveDocumentRejectsDanglingEdge(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t, "http://127.0.0.1:0")
	doc := createDocument(t, app, "Integrity Flow")

	// The submitted graph has an edge but no nodes to anchor it.
	resp := doJSON(t, app, http.MethodPut, "/documents/"+doc.ID, web.SaveDocumentRequest{
		Nodes:   []*models.Node{},
		Edges:   []*models.Edge{models.NewEdge("t1", "ghost", "")},
		Version: doc.Version,
	})

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIHandlers_NodeAndEdgeLifecycle(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t, "http://127.0.0.1:0")
	doc := createDocument(t, app, "Edited Flow")

	resp := doJSON(t, app, http.MethodPost, "/documents/"+doc.ID+"/nodes", web.CreateNodeRequest{
		Kind:     "trigger",
		Position: models.Position{X: 40, Y: 40},
		Label:    "Start",
		Version:  1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var triggerResp web.NodeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&triggerResp))
	_ = resp.Body.Close()

	require.NotNil(t, triggerResp.Node)
	assert.Equal(t, models.NodeKindTrigger, triggerResp.Node.Kind)
	assert.Equal(t, "Start", triggerResp.Node.Label)

	resp = doJSON(t, app, http.MethodPost, "/documents/"+doc.ID+"/nodes", web.CreateNodeRequest{
		Kind:     "action",
		Position: models.Position{X: 240, Y: 40},
		Config:   map[string]any{"actionType": "send_message", "message": "hello"},
		Version:  triggerResp.Version,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var actionResp web.NodeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&actionResp))
	_ = resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/documents/"+doc.ID+"/edges", web.CreateEdgeRequest{
		Source:  triggerResp.Node.ID,
		Target:  actionResp.Node.ID,
		Version: actionResp.Version,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var edgeResp web.EdgeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&edgeResp))
	_ = resp.Body.Close()

	require.NotNil(t, edgeResp.Edge)
	assert.Nil(t, edgeResp.Edge.SourceHandle)

	// Removing the action cascades its edge.
	resp = doJSON(t, app, http.MethodDelete, "/documents/"+doc.ID+"/nodes/"+actionResp.Node.ID,
		web.VersionedRequest{Version: edgeResp.Version})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	saved := decodeDocument(t, resp)
	assert.Len(t, saved.Nodes, 1)
	assert.Empty(t, saved.Edges)
}

func TestAPIHandlers_EdgeRejections(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t, "http://127.0.0.1:0")
	doc := createDocument(t, app, "Rejection Flow")

	resp := doJSON(t, app, http.MethodPost, "/documents/"+doc.ID+"/nodes", web.CreateNodeRequest{
		Kind:    "trigger",
		Version: 1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var triggerResp web.NodeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&triggerResp))
	_ = resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/documents/"+doc.ID+"/edges", web.CreateEdgeRequest{
		Source:  triggerResp.Node.ID,
		Target:  triggerResp.Node.ID,
		Version: triggerResp.Version,
	})

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIHandlers_MoveNodeSnapsToGrid(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t, "http://127.0.0.1:0")
	doc := createDocument(t, app, "Grid Flow")

	resp := doJSON(t, app, http.MethodPost, "/documents/"+doc.ID+"/nodes", web.CreateNodeRequest{
		Kind:    "trigger",
		Version: 1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var nodeResp web.NodeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&nodeResp))
	_ = resp.Body.Close()

	grid := 20
	resp = doJSON(t, app, http.MethodPut,
		"/documents/"+doc.ID+"/nodes/"+nodeResp.Node.ID+"/position", web.MoveNodeRequest{
			Position: models.Position{X: 37, Y: 52},
			Grid:     &grid,
			Version:  nodeResp.Version,
		})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var moved web.NodeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&moved))
	_ = resp.Body.Close()

	assert.InDelta(t, 40, moved.Node.Position.X, 0.001)
	assert.InDelta(t, 60, moved.Node.Position.Y, 0.001)
}

func TestAPIHandlers_ActivationGate(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t, "http://127.0.0.1:0")
	doc := createDocument(t, app, "Gate Flow")

	// No trigger node: activation must be refused with the readiness report.
	resp := doJSON(t, app, http.MethodPost, "/documents/"+doc.ID+"/activate", nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var refusal struct {
		Readiness *readiness.Report `json:"readiness"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&refusal))
	_ = resp.Body.Close()

	require.NotNil(t, refusal.Readiness)
	assert.NotEmpty(t, refusal.Readiness.Failures)

	resp = doJSON(t, app, http.MethodPost, "/documents/"+doc.ID+"/nodes", web.CreateNodeRequest{
		Kind:    "trigger",
		Version: 1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/documents/"+doc.ID+"/activate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Document  *models.GraphDocument `json:"document"`
		Readiness *readiness.Report     `json:"readiness"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	_ = resp.Body.Close()

	assert.True(t, result.Document.IsActive)

	resp = doJSON(t, app, http.MethodPost, "/documents/"+doc.ID+"/deactivate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	deactivated := decodeDocument(t, resp)
	assert.False(t, deactivated.IsActive)
}

func TestAPIHandlers_ReadinessEndpoint(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t, "http://127.0.0.1:0")
	doc := createDocument(t, app, "Readiness Flow")

	resp := doJSON(t, app, http.MethodGet, "/documents/"+doc.ID+"/readiness", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report readiness.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	_ = resp.Body.Close()

	assert.NotEmpty(t, report.Failures)
}

func TestAPIHandlers_NodeCatalog(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t, "http://127.0.0.1:0")

	resp := doJSON(t, app, http.MethodGet, "/registry/nodes", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var catalog struct {
		Nodes []*models.RegisteredComponent `json:"nodes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&catalog))
	_ = resp.Body.Close()

	assert.Len(t, catalog.Nodes, len(models.NodeKinds()))
}

func TestAPIHandlers_GetUsersProxy(t *testing.T) {
	t.Parallel()

	directory := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":"u-1","name":"Ana","role":"agent"}]`)
	}))
	defer directory.Close()

	app, _ := setupTestApp(t, directory.URL)

	resp := doJSON(t, app, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var users []*collaborators.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&users))
	_ = resp.Body.Close()

	require.Len(t, users, 1)
	assert.Equal(t, "Ana", users[0].Name)
}

func TestAPIHandlers_HealthCheck(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t, "http://127.0.0.1:0")

	resp := doJSON(t, app, http.MethodGet, "/health", nil)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
