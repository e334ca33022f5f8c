package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"familytree/internal/docstore"
	"familytree/internal/models"
)

// PersonRepository handles storage of people
type PersonRepository struct {
	store docstore.Store
}

// NewPersonRepository creates a new person repository
func NewPersonRepository(store docstore.Store) *PersonRepository {
	return &PersonRepository{store: store}
}

// Create persists a person and sets its ID
func (r *PersonRepository) Create(ctx context.Context, person *models.Person) error {
	fields, err := toFields(person)
	if err != nil {
		return err
	}
	id, err := r.store.Insert(ctx, docstore.People, fields)
	if err != nil {
		return fmt.Errorf("failed to create person: %w", err)
	}
	person.ID = id
	return nil
}

// GetByID retrieves a person, archived or not. Returns nil when absent.
func (r *PersonRepository) GetByID(ctx context.Context, id string) (*models.Person, error) {
	doc, err := r.store.Get(ctx, docstore.People, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return decodePerson(doc)
}

// ListActive retrieves every active person
func (r *PersonRepository) ListActive(ctx context.Context) ([]models.Person, error) {
	docs, err := r.store.FindEqual(ctx, docstore.People, "isActive", true)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	people := make([]models.Person, 0, len(docs))
	for _, doc := range docs {
		p, err := decodePerson(doc)
		if err != nil {
			return nil, err
		}
		people = append(people, *p)
	}
	return people, nil
}

// Update merges a partial update
func (r *PersonRepository) Update(ctx context.Context, id string, update models.PersonUpdate, now time.Time) error {
	fields, err := updateFields(update, now)
	if err != nil {
		return err
	}
	if err := r.store.Merge(ctx, docstore.People, id, fields); err != nil {
		return fmt.Errorf("failed to update person: %w", err)
	}
	return nil
}

// Archive soft-deletes a person
func (r *PersonRepository) Archive(ctx context.Context, id string, now time.Time) error {
	if err := r.store.Merge(ctx, docstore.People, id, archiveFields(now)); err != nil {
		return fmt.Errorf("failed to archive person: %w", err)
	}
	return nil
}

func decodePerson(doc docstore.Document) (*models.Person, error) {
	var p models.Person
	if err := fromDocument(doc, &p); err != nil {
		return nil, err
	}
	p.ID = doc.ID
	return &p, nil
}
