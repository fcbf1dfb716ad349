// Package cmd wires shared infrastructure for the chatflow binaries.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/chatflowhq/chatflow/pkg/persistence"
	"github.com/chatflowhq/chatflow/pkg/persistence/file"
	"github.com/chatflowhq/chatflow/pkg/persistence/postgresql"
	"github.com/chatflowhq/chatflow/pkg/persistence/redis"
)

// NewPersistence selects a document store from the database URL scheme:
// postgres://, redis://, or a file path / file:// fallback.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	case "redis", "rediss":
		return redis.NewPersistence(ctx, databaseURL)
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

func parsePersistenceProvider(databaseURL string) string {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return scheme
}

// ClosePersistence shuts a store down, logging instead of failing.
func ClosePersistence(ctx context.Context, logger *slog.Logger, store persistence.Persistence) {
	if err := store.Close(ctx); err != nil {
		logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
	}
}
