// Package postgresql provides PostgreSQL persistence for workflow graph documents.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/chatflowhq/chatflow/pkg/models"
	"github.com/chatflowhq/chatflow/pkg/persistence/sqlbase"
	_ "github.com/lib/pq" // postgres driver
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db           *sql.DB
	logger       *slog.Logger
	documentRepo *DocumentRepository
}

// NewPersistence connects to PostgreSQL and runs pending migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:           database,
		logger:       logger,
		documentRepo: NewDocumentRepository(database, logger),
	}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(ctx context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Documents returns all documents from the database.
func (p *Persistence) Documents(ctx context.Context) ([]*models.GraphDocument, error) {
	return p.documentRepo.GetAll(ctx)
}

// DocumentByID returns a document by its ID.
func (p *Persistence) DocumentByID(ctx context.Context, id string) (*models.GraphDocument, error) {
	return p.documentRepo.GetByID(ctx, id)
}

// CreateDocument inserts a new document at version 1.
func (p *Persistence) CreateDocument(ctx context.Context, doc *models.GraphDocument) error {
	return p.documentRepo.Create(ctx, doc)
}

// SaveDocument persists a document, enforcing the optimistic version check.
func (p *Persistence) SaveDocument(ctx context.Context, doc *models.GraphDocument) (*models.GraphDocument, error) {
	return p.documentRepo.Save(ctx, doc)
}

// SetActive flips the activation flag without bumping the version.
func (p *Persistence) SetActive(ctx context.Context, id string, active bool) (*models.GraphDocument, error) {
	return p.documentRepo.SetActive(ctx, id, active)
}

// DeleteDocument removes a document.
func (p *Persistence) DeleteDocument(ctx context.Context, id string) error {
	return p.documentRepo.Delete(ctx, id)
}
