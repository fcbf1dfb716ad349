// Package redis provides a Redis-backed store for workflow graph documents.
// Documents are JSON values under a per-id key, with a set index for listing;
// the optimistic version check runs inside a WATCH transaction.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chatflowhq/chatflow/pkg/models"
	"github.com/chatflowhq/chatflow/pkg/persistence"
	goredis "github.com/redis/go-redis/v9"
)

const (
	documentKeyPrefix = "chatflow:documents:"
	documentIndexKey  = "chatflow:documents"
)

// Persistence implements persistence.Persistence on Redis.
type Persistence struct {
	client *goredis.Client
}

// NewPersistence connects to Redis using a redis:// URL.
func NewPersistence(ctx context.Context, redisURL string) (*Persistence, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Persistence{client: client}, nil
}

func documentKey(id string) string {
	return documentKeyPrefix + id
}

// Documents returns every indexed document.
func (p *Persistence) Documents(ctx context.Context) ([]*models.GraphDocument, error) {
	ids, err := p.client.SMembers(ctx, documentIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list document ids: %w", err)
	}

	documents := make([]*models.GraphDocument, 0, len(ids))

	for _, id := range ids {
		doc, err := p.DocumentByID(ctx, id)
		if err != nil {
			if persistence.IsDocumentNotFound(err) {
				continue
			}

			return nil, err
		}

		documents = append(documents, doc)
	}

	return documents, nil
}

// DocumentByID loads a single document.
func (p *Persistence) DocumentByID(ctx context.Context, id string) (*models.GraphDocument, error) {
	data, err := p.client.Get(ctx, documentKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
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

// CreateDocument stores a new document at version 1.
func (p *Persistence) CreateDocument(ctx context.Context, doc *models.GraphDocument) error {
	doc.Version = 1

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", doc.ID, err)
	}

	created, err := p.client.SetNX(ctx, documentKey(doc.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to store document %s: %w", doc.ID, err)
	}

	if !created {
		return persistence.NewDocumentError("Create", doc.ID, persistence.ErrDocumentAlreadyExists)
	}

	if err := p.client.SAdd(ctx, documentIndexKey, doc.ID).Err(); err != nil {
		return fmt.Errorf("failed to index document %s: %w", doc.ID, err)
	}

	return nil
}

// SaveDocument performs the optimistic check-and-set inside a WATCH
// transaction so a concurrent writer aborts the save instead of losing it.
func (p *Persistence) SaveDocument(ctx context.Context, doc *models.GraphDocument) (*models.GraphDocument, error) {
	var updated *models.GraphDocument

	save := func(tx *goredis.Tx) error {
		data, err := tx.Get(ctx, documentKey(doc.ID)).Bytes()
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				return persistence.NewDocumentError("Save", doc.ID, persistence.ErrDocumentNotFound)
			}

			return err
		}

		var stored models.GraphDocument
		if err := json.Unmarshal(data, &stored); err != nil {
			return fmt.Errorf("failed to decode document %s: %w", doc.ID, err)
		}

		if stored.Version != doc.Version {
			return persistence.NewDocumentError("Save", doc.ID, persistence.ErrVersionConflict)
		}

		updated = doc.Clone()
		updated.Version = stored.Version + 1
		updated.CreatedAt = stored.CreatedAt
		updated.UpdatedAt = time.Now().UTC()

		payload, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("failed to encode document %s: %w", doc.ID, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, documentKey(doc.ID), payload, 0)

			return nil
		})

		return err
	}

	if err := p.client.Watch(ctx, save, documentKey(doc.ID)); err != nil {
		if errors.Is(err, goredis.TxFailedErr) {
			return nil, persistence.NewDocumentError("Save", doc.ID, persistence.ErrVersionConflict)
		}

		return nil, err
	}

	return updated, nil
}

// SetActive flips the activation flag without touching the version.
func (p *Persistence) SetActive(ctx context.Context, id string, active bool) (*models.GraphDocument, error) {
	doc, err := p.DocumentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	doc.IsActive = active
	doc.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document %s: %w", id, err)
	}

	if err := p.client.Set(ctx, documentKey(id), data, 0).Err(); err != nil {
		return nil, fmt.Errorf("failed to store document %s: %w", id, err)
	}

	return doc, nil
}

// DeleteDocument removes the document and its index entry.
func (p *Persistence) DeleteDocument(ctx context.Context, id string) error {
	removed, err := p.client.Del(ctx, documentKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}

	if removed == 0 {
		return persistence.NewDocumentError("Delete", id, persistence.ErrDocumentNotFound)
	}

	return p.client.SRem(ctx, documentIndexKey, id).Err()
}

// HealthCheck pings the server.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close releases the client connection pool.
func (p *Persistence) Close(ctx context.Context) error {
	return p.client.Close()
}
