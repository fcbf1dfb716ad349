package cmd

import (
	"log/slog"

	"github.com/chatflowhq/chatflow/pkg/registry"
)

// NewRegistry builds the node catalog with the built-in node kinds.
func NewRegistry(logger *slog.Logger) *registry.Registry {
	r := registry.NewRegistry(logger)
	r.RegisterDefaultNodes()

	return r
}
