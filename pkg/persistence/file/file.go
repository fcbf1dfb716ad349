// Package file provides file-based persistence for workflow graph documents.
// Each document is one JSON file under <root>/documents; the optimistic
// version check-and-set is guarded by an in-process mutex.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chatflowhq/chatflow/pkg/models"
	"github.com/chatflowhq/chatflow/pkg/persistence"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Persistence implements persistence.Persistence on the local filesystem.
type Persistence struct {
	root string
	mu   sync.Mutex
}

// NewPersistence creates a file store rooted at the given directory. A
// "file://" prefix is stripped so database-url style configuration works.
func NewPersistence(root string) *Persistence {
	return &Persistence{root: strings.TrimPrefix(root, "file://")}
}

func (p *Persistence) documentsDir() string {
	return filepath.Join(p.root, "documents")
}

func (p *Persistence) documentPath(id string) string {
	return filepath.Join(p.documentsDir(), id+".json")
}

// Documents returns every stored document.
func (p *Persistence) Documents(ctx context.Context) ([]*models.GraphDocument, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entries, err := os.ReadDir(p.documentsDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make([]*models.GraphDocument, 0), nil
		}

		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	documents := make([]*models.GraphDocument, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		doc, err := p.read(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			return nil, err
		}

		documents = append(documents, doc)
	}

	return documents, nil
}

// DocumentByID loads a single document.
func (p *Persistence) DocumentByID(ctx context.Context, id string) (*models.GraphDocument, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.read(id)
}

// CreateDocument stores a new document at version 1.
func (p *Persistence) CreateDocument(ctx context.Context, doc *models.GraphDocument) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := os.Stat(p.documentPath(doc.ID)); err == nil {
		return persistence.NewDocumentError("Create", doc.ID, persistence.ErrDocumentAlreadyExists)
	}

	doc.Version = 1

	return p.write(doc)
}

// SaveDocument accepts the save only when the incoming version matches the
// stored one, then stores and returns the document with the version bumped.
func (p *Persistence) SaveDocument(ctx context.Context, doc *models.GraphDocument) (*models.GraphDocument, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stored, err := p.read(doc.ID)
	if err != nil {
		return nil, err
	}

	if stored.Version != doc.Version {
		return nil, persistence.NewDocumentError("Save", doc.ID, persistence.ErrVersionConflict)
	}

	updated := doc.Clone()
	updated.Version = stored.Version + 1
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if err := p.write(updated); err != nil {
		return nil, err
	}

	return updated, nil
}

// SetActive flips the activation flag without touching the version.
func (p *Persistence) SetActive(ctx context.Context, id string, active bool) (*models.GraphDocument, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stored, err := p.read(id)
	if err != nil {
		return nil, err
	}

	stored.IsActive = active
	stored.UpdatedAt = time.Now().UTC()

	if err := p.write(stored); err != nil {
		return nil, err
	}

	return stored, nil
}

// DeleteDocument removes a document. Deleting an absent id fails with
// ErrDocumentNotFound.
func (p *Persistence) DeleteDocument(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := os.Remove(p.documentPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return persistence.NewDocumentError("Delete", id, persistence.ErrDocumentNotFound)
	}

	return err
}

// HealthCheck verifies the storage root is present.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close is a no-op for file persistence.
func (p *Persistence) Close(ctx context.Context) error {
	return nil
}

func (p *Persistence) read(id string) (*models.GraphDocument, error) {
	data, err := os.ReadFile(p.documentPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, persistence.NewDocumentError("GetByID", id, persistence.ErrDocumentNotFound)
		}

		return nil, fmt.Errorf("failed to read document %s: %w", id, err)
	}

	var doc models.GraphDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
	}

	return &doc, nil
}

func (p *Persistence) write(doc *models.GraphDocument) error {
	if err := os.MkdirAll(p.documentsDir(), dirPerm); err != nil {
		return fmt.Errorf("failed to create documents directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", doc.ID, err)
	}

	if err := os.WriteFile(p.documentPath(doc.ID), data, filePerm); err != nil {
		return fmt.Errorf("failed to write document %s: %w", doc.ID, err)
	}

	return nil
}
