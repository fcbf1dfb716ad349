// Package registry provides the node catalog: the set of node kinds the
// builder palette offers, each with its configuration schema.
package registry

import (
	"fmt"
	"log/slog"

	"github.com/chatflowhq/chatflow/pkg/models"
)

type Registry struct {
	logger     *slog.Logger
	components map[models.NodeKind]*models.RegisteredComponent
	order      []models.NodeKind
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:     log,
		components: make(map[models.NodeKind]*models.RegisteredComponent),
		order:      make([]models.NodeKind, 0),
	}
}

// Register adds a component to the catalog, replacing any previous entry for
// the same kind.
func (r *Registry) Register(component *models.RegisteredComponent) {
	if _, exists := r.components[component.Kind]; !exists {
		r.order = append(r.order, component.Kind)
	}

	r.components[component.Kind] = component
}

// Component retrieves catalog metadata for a node kind.
func (r *Registry) Component(kind models.NodeKind) (*models.RegisteredComponent, error) {
	component, ok := r.components[kind]
	if !ok {
		return nil, fmt.Errorf("node kind '%s' not registered", kind)
	}

	return component, nil
}

// Components returns all registered components in registration order.
func (r *Registry) Components() []*models.RegisteredComponent {
	components := make([]*models.RegisteredComponent, 0, len(r.order))
	for _, kind := range r.order {
		components = append(components, r.components[kind])
	}

	return components
}
