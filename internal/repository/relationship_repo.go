package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"familytree/internal/docstore"
	"familytree/internal/models"
)

// RelationshipRepository handles storage of relationships
type RelationshipRepository struct {
	store docstore.Store
}

// NewRelationshipRepository creates a new relationship repository
func NewRelationshipRepository(store docstore.Store) *RelationshipRepository {
	return &RelationshipRepository{store: store}
}

// Create persists a relationship and sets its ID
func (r *RelationshipRepository) Create(ctx context.Context, rel *models.Relationship) error {
	fields, err := toFields(rel)
	if err != nil {
		return err
	}
	id, err := r.store.Insert(ctx, docstore.Relationships, fields)
	if err != nil {
		return fmt.Errorf("failed to create relationship: %w", err)
	}
	rel.ID = id
	return nil
}

// GetByID retrieves a relationship, archived or not. Returns nil when absent.
func (r *RelationshipRepository) GetByID(ctx context.Context, id string) (*models.Relationship, error) {
	doc, err := r.store.Get(ctx, docstore.Relationships, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get relationship: %w", err)
	}
	return decodeRelationship(doc)
}

// ListActive retrieves every active relationship
func (r *RelationshipRepository) ListActive(ctx context.Context) ([]models.Relationship, error) {
	docs, err := r.store.FindEqual(ctx, docstore.Relationships, "isActive", true)
	if err != nil {
		return nil, fmt.Errorf("failed to list relationships: %w", err)
	}
	return decodeRelationships(docs)
}

// ListActiveByFamily retrieves the active relationships of one family
func (r *RelationshipRepository) ListActiveByFamily(ctx context.Context, familyID string) ([]models.Relationship, error) {
	docs, err := r.store.FindEqual(ctx, docstore.Relationships, "familyId", familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list family relationships: %w", err)
	}
	rels, err := decodeRelationships(docs)
	if err != nil {
		return nil, err
	}
	active := rels[:0]
	for _, rel := range rels {
		if rel.IsActive {
			active = append(active, rel)
		}
	}
	return active, nil
}

// Update merges a partial update
func (r *RelationshipRepository) Update(ctx context.Context, id string, update models.RelationshipUpdate, now time.Time) error {
	fields, err := updateFields(update, now)
	if err != nil {
		return err
	}
	if err := r.store.Merge(ctx, docstore.Relationships, id, fields); err != nil {
		return fmt.Errorf("failed to update relationship: %w", err)
	}
	return nil
}

// Archive soft-deletes a relationship
func (r *RelationshipRepository) Archive(ctx context.Context, id string, now time.Time) error {
	if err := r.store.Merge(ctx, docstore.Relationships, id, archiveFields(now)); err != nil {
		return fmt.Errorf("failed to archive relationship: %w", err)
	}
	return nil
}

func decodeRelationships(docs []docstore.Document) ([]models.Relationship, error) {
	rels := make([]models.Relationship, 0, len(docs))
	for _, doc := range docs {
		rel, err := decodeRelationship(doc)
		if err != nil {
			return nil, err
		}
		rels = append(rels, *rel)
	}
	return rels, nil
}

func decodeRelationship(doc docstore.Document) (*models.Relationship, error) {
	var rel models.Relationship
	if err := fromDocument(doc, &rel); err != nil {
		return nil, err
	}
	rel.ID = doc.ID
	return &rel, nil
}
