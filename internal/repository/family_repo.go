package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"familytree/internal/docstore"
	"familytree/internal/models"
)

// FamilyRepository handles storage of families
type FamilyRepository struct {
	store docstore.Store
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(store docstore.Store) *FamilyRepository {
	return &FamilyRepository{store: store}
}

// Create persists a family and sets its ID
func (r *FamilyRepository) Create(ctx context.Context, family *models.Family) error {
	fields, err := toFields(family)
	if err != nil {
		return err
	}
	id, err := r.store.Insert(ctx, docstore.Families, fields)
	if err != nil {
		return fmt.Errorf("failed to create family: %w", err)
	}
	family.ID = id
	return nil
}

// GetByID retrieves a family, archived or not. Returns nil when absent.
func (r *FamilyRepository) GetByID(ctx context.Context, id string) (*models.Family, error) {
	doc, err := r.store.Get(ctx, docstore.Families, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	return decodeFamily(doc)
}

// ListActive retrieves every active family
func (r *FamilyRepository) ListActive(ctx context.Context) ([]models.Family, error) {
	docs, err := r.store.FindEqual(ctx, docstore.Families, "isActive", true)
	if err != nil {
		return nil, fmt.Errorf("failed to list families: %w", err)
	}
	families := make([]models.Family, 0, len(docs))
	for _, doc := range docs {
		f, err := decodeFamily(doc)
		if err != nil {
			return nil, err
		}
		families = append(families, *f)
	}
	return families, nil
}

// Update merges a partial update
func (r *FamilyRepository) Update(ctx context.Context, id string, update models.FamilyUpdate, now time.Time) error {
	fields, err := updateFields(update, now)
	if err != nil {
		return err
	}
	if err := r.store.Merge(ctx, docstore.Families, id, fields); err != nil {
		return fmt.Errorf("failed to update family: %w", err)
	}
	return nil
}

func decodeFamily(doc docstore.Document) (*models.Family, error) {
	var f models.Family
	if err := fromDocument(doc, &f); err != nil {
		return nil, err
	}
	f.ID = doc.ID
	return &f, nil
}
