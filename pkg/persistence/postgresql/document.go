package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chatflowhq/chatflow/pkg/models"
	"github.com/chatflowhq/chatflow/pkg/persistence"
)

// DocumentRepository handles document-related database operations.
type DocumentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(db *sql.DB, logger *slog.Logger) *DocumentRepository {
	return &DocumentRepository{db: db, logger: logger}
}

const documentColumns = `
		id
	  , name
	  , description
	  , is_active
	  , nodes
	  , edges
	  , viewport
	  , version
	  , created_at
	  , updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.GraphDocument, error) {
	var (
		doc          models.GraphDocument
		nodesJSON    []byte
		edgesJSON    []byte
		viewportJSON []byte
	)

	err := row.Scan(
		&doc.ID,
		&doc.Name,
		&doc.Description,
		&doc.IsActive,
		&nodesJSON,
		&edgesJSON,
		&viewportJSON,
		&doc.Version,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(nodesJSON, &doc.Nodes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal nodes: %w", err)
	}

	if err := json.Unmarshal(edgesJSON, &doc.Edges); err != nil {
		return nil, fmt.Errorf("failed to unmarshal edges: %w", err)
	}

	if err := json.Unmarshal(viewportJSON, &doc.Viewport); err != nil {
		return nil, fmt.Errorf("failed to unmarshal viewport: %w", err)
	}

	return &doc, nil
}

func marshalGraph(doc *models.GraphDocument) (nodes, edges, viewport []byte, err error) {
	nodes, err = json.Marshal(doc.Nodes)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal nodes: %w", err)
	}

	edges, err = json.Marshal(doc.Edges)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal edges: %w", err)
	}

	viewport, err = json.Marshal(doc.Viewport)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal viewport: %w", err)
	}

	return nodes, edges, viewport, nil
}

// GetAll returns all documents ordered by creation time, newest first.
func (r *DocumentRepository) GetAll(ctx context.Context) ([]*models.GraphDocument, error) {
	query := "SELECT " + documentColumns + " FROM documents ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	documents := make([]*models.GraphDocument, 0)

	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}

		documents = append(documents, doc)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return documents, nil
}

// GetByID returns a single document.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.GraphDocument, error) {
	query := "SELECT " + documentColumns + " FROM documents WHERE id = $1"

	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewDocumentError("GetByID", id, persistence.ErrDocumentNotFound)
		}

		return nil, fmt.Errorf("failed to scan document: %w", err)
	}

	return doc, nil
}

// Create inserts a new document at version 1.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.GraphDocument) error {
	doc.Version = 1

	nodesJSON, edgesJSON, viewportJSON, err := marshalGraph(doc)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO documents (id, name, description, is_active, nodes, edges, viewport, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		doc.ID,
		doc.Name,
		doc.Description,
		doc.IsActive,
		nodesJSON,
		edgesJSON,
		viewportJSON,
		doc.Version,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read insert result: %w", err)
	}

	if inserted == 0 {
		return persistence.NewDocumentError("Create", doc.ID, persistence.ErrDocumentAlreadyExists)
	}

	return nil
}

// Save updates a document. The version guard in the WHERE clause is the
// optimistic-concurrency check: zero rows affected means either a stale
// version or a missing document, disambiguated with a follow-up lookup.
func (r *DocumentRepository) Save(ctx context.Context, doc *models.GraphDocument) (*models.GraphDocument, error) {
	nodesJSON, edgesJSON, viewportJSON, err := marshalGraph(doc)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE documents SET
			name = $1,
			description = $2,
			nodes = $3,
			edges = $4,
			viewport = $5,
			version = version + 1,
			updated_at = $6
		WHERE id = $7 AND version = $8
		RETURNING ` + documentColumns

	row := r.db.QueryRowContext(ctx, query,
		doc.Name,
		doc.Description,
		nodesJSON,
		edgesJSON,
		viewportJSON,
		time.Now().UTC(),
		doc.ID,
		doc.Version,
	)

	updated, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, lookupErr := r.GetByID(ctx, doc.ID); lookupErr != nil {
				return nil, lookupErr
			}

			return nil, persistence.NewDocumentError("Save", doc.ID, persistence.ErrVersionConflict)
		}

		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	return updated, nil
}

// SetActive flips the activation flag without touching the version.
func (r *DocumentRepository) SetActive(ctx context.Context, id string, active bool) (*models.GraphDocument, error) {
	query := `
		UPDATE documents SET
			is_active = $1,
			updated_at = $2
		WHERE id = $3
		RETURNING ` + documentColumns

	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, active, time.Now().UTC(), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewDocumentError("SetActive", id, persistence.ErrDocumentNotFound)
		}

		return nil, fmt.Errorf("failed to update document activation: %w", err)
	}

	return doc, nil
}

// Delete removes a document.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}

	if deleted == 0 {
		return persistence.NewDocumentError("Delete", id, persistence.ErrDocumentNotFound)
	}

	return nil
}
