package registry_test

import (
	"log/slog"
	"os"
	"testing"

	"github.com/chatflowhq/chatflow/pkg/models"
	"github.com/chatflowhq/chatflow/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *registry.Registry {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	r := registry.NewRegistry(logger)
	r.RegisterDefaultNodes()

	return r
}

func TestRegistry_DefaultNodesCoverAllKinds(t *testing.T) {
	r := newTestRegistry()

	components := r.Components()
	require.Len(t, components, len(models.NodeKinds()))

	for _, kind := range models.NodeKinds() {
		component, err := r.Component(kind)
		require.NoError(t, err)
		assert.Equal(t, kind, component.Kind)
		assert.NotEmpty(t, component.Name)
		require.NotNil(t, component.Schema)
		assert.Equal(t, "object", component.Schema.Type)
	}
}

func TestRegistry_UnknownKind(t *testing.T) {
	r := newTestRegistry()

	_, err := r.Component(models.NodeKind("loop"))
	assert.Error(t, err)
}

func TestRegistry_RegisterReplacesExisting(t *testing.T) {
	r := newTestRegistry()

	r.Register(&models.RegisteredComponent{
		Kind:   models.NodeKindDelay,
		Name:   "Pause",
		Schema: models.ConfigSchema(models.NodeKindDelay),
	})

	component, err := r.Component(models.NodeKindDelay)
	require.NoError(t, err)
	assert.Equal(t, "Pause", component.Name)
	assert.Len(t, r.Components(), len(models.NodeKinds()))
}
