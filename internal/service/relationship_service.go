package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"familytree/internal/cache"
	"familytree/internal/docstore"
	"familytree/internal/metrics"
	"familytree/internal/models"
	"familytree/internal/repository"
)

var (
	ErrPersonNotFound       = errors.New("person not found")
	ErrFamilyNotFound       = errors.New("family not found")
	ErrRelationshipNotFound = errors.New("relationship not found")
)

// RelationshipService owns people, families and relationships. Mutations go
// straight to the store; queries read the cache, which only changes when a
// load succeeds.
type RelationshipService struct {
	repos  *repository.Repositories
	cache  *cache.Cache
	logger *zap.Logger
	now    func() time.Time
}

// NewRelationshipService creates a new relationship service. A nil clock
// uses time.Now.
func NewRelationshipService(repos *repository.Repositories, c *cache.Cache, logger *zap.Logger, now func() time.Time) *RelationshipService {
	if now == nil {
		now = time.Now
	}
	return &RelationshipService{
		repos:  repos,
		cache:  c,
		logger: logger,
		now:    now,
	}
}

// Now returns the service clock's current time
func (s *RelationshipService) Now() time.Time {
	return s.now()
}

func notFound(err error, sentinel error, id string) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("%w: %s", sentinel, id)
	}
	return err
}

// AddPerson persists a new active person and returns it with its ID
func (s *RelationshipService) AddPerson(ctx context.Context, person models.Person) (*models.Person, error) {
	person.ID = ""
	person.Record = models.NewRecord(person.CreatedBy, s.now())
	if err := s.repos.People.Create(ctx, &person); err != nil {
		return nil, err
	}
	return &person, nil
}

// UpdatePerson merges a partial update. The cache is not refreshed.
func (s *RelationshipService) UpdatePerson(ctx context.Context, id string, update models.PersonUpdate) error {
	return notFound(s.repos.People.Update(ctx, id, update, s.now()), ErrPersonNotFound, id)
}

// DeletePerson archives a person. The record stays fetchable by ID.
func (s *RelationshipService) DeletePerson(ctx context.Context, id string) error {
	return notFound(s.repos.People.Archive(ctx, id, s.now()), ErrPersonNotFound, id)
}

// FetchPerson reads a person from the store, archived or not
func (s *RelationshipService) FetchPerson(ctx context.Context, id string) (*models.Person, error) {
	person, err := s.repos.People.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if person == nil {
		return nil, fmt.Errorf("%w: %s", ErrPersonNotFound, id)
	}
	return person, nil
}

// CreateFamily persists a new active family. An empty type means nuclear.
func (s *RelationshipService) CreateFamily(ctx context.Context, family models.Family) (*models.Family, error) {
	family.ID = ""
	if family.FamilyType == "" {
		family.FamilyType = models.FamilyNuclear
	}
	family.Record = models.NewRecord(family.CreatedBy, s.now())
	if err := s.repos.Families.Create(ctx, &family); err != nil {
		return nil, err
	}
	return &family, nil
}

// UpdateFamily merges a partial update. The cache is not refreshed.
func (s *RelationshipService) UpdateFamily(ctx context.Context, id string, update models.FamilyUpdate) error {
	return notFound(s.repos.Families.Update(ctx, id, update, s.now()), ErrFamilyNotFound, id)
}

// DeleteFamily archives a family and every active relationship in it as one
// atomic batch. Relationships are looked up in the store, not the cache.
func (s *RelationshipService) DeleteFamily(ctx context.Context, id string) error {
	rels, err := s.repos.Relationships.ListActiveByFamily(ctx, id)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(rels))
	for _, rel := range rels {
		ids = append(ids, rel.ID)
	}
	if err := s.repos.ArchiveFamily(ctx, id, ids, s.now()); err != nil {
		return notFound(err, ErrFamilyNotFound, id)
	}
	s.logger.Info("family archived",
		zap.String("family_id", id),
		zap.Int("relationships", len(ids)),
	)
	return nil
}

// FetchFamily reads a family from the store, archived or not
func (s *RelationshipService) FetchFamily(ctx context.Context, id string) (*models.Family, error) {
	family, err := s.repos.Families.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, fmt.Errorf("%w: %s", ErrFamilyNotFound, id)
	}
	return family, nil
}

// AddRelationship persists a new active relationship
func (s *RelationshipService) AddRelationship(ctx context.Context, rel models.Relationship) (*models.Relationship, error) {
	rel.ID = ""
	rel.Record = models.NewRecord(rel.CreatedBy, s.now())
	if err := s.repos.Relationships.Create(ctx, &rel); err != nil {
		return nil, err
	}
	return &rel, nil
}

// UpdateRelationship merges a partial update. The cache is not refreshed.
func (s *RelationshipService) UpdateRelationship(ctx context.Context, id string, update models.RelationshipUpdate) error {
	return notFound(s.repos.Relationships.Update(ctx, id, update, s.now()), ErrRelationshipNotFound, id)
}

// RemoveRelationship archives a relationship
func (s *RelationshipService) RemoveRelationship(ctx context.Context, id string) error {
	return notFound(s.repos.Relationships.Archive(ctx, id, s.now()), ErrRelationshipNotFound, id)
}

// FetchRelationship reads a relationship from the store, archived or not
func (s *RelationshipService) FetchRelationship(ctx context.Context, id string) (*models.Relationship, error) {
	rel, err := s.repos.Relationships.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rel == nil {
		return nil, fmt.Errorf("%w: %s", ErrRelationshipNotFound, id)
	}
	return rel, nil
}

// LoadAll refreshes the three cached collections concurrently. A failed load
// is logged and counted and leaves that collection as it was; it never
// affects the other loads and is not returned.
func (s *RelationshipService) LoadAll(ctx context.Context) {
	var g errgroup.Group
	g.Go(func() error { _ = s.LoadPeople(ctx); return nil })
	g.Go(func() error { _ = s.LoadFamilies(ctx); return nil })
	g.Go(func() error { _ = s.LoadRelationships(ctx); return nil })
	_ = g.Wait()
}

// LoadPeople replaces the cached people with the active people in the store
func (s *RelationshipService) LoadPeople(ctx context.Context) error {
	people, err := s.repos.People.ListActive(ctx)
	if err != nil {
		return s.loadFailed(docstore.People, err)
	}
	s.cache.SetPeople(people, s.now())
	return nil
}

// LoadFamilies replaces the cached families with the active families in the store
func (s *RelationshipService) LoadFamilies(ctx context.Context) error {
	families, err := s.repos.Families.ListActive(ctx)
	if err != nil {
		return s.loadFailed(docstore.Families, err)
	}
	s.cache.SetFamilies(families, s.now())
	return nil
}

// LoadRelationships replaces the cached relationships with the active ones in the store
func (s *RelationshipService) LoadRelationships(ctx context.Context) error {
	rels, err := s.repos.Relationships.ListActive(ctx)
	if err != nil {
		return s.loadFailed(docstore.Relationships, err)
	}
	s.cache.SetRelationships(rels, s.now())
	return nil
}

func (s *RelationshipService) loadFailed(collection string, err error) error {
	metrics.CacheLoadFailures.WithLabelValues(collection).Inc()
	s.logger.Error("failed to load collection, keeping cached copy",
		zap.String("collection", collection),
		zap.Time("loaded_at", s.cache.Snapshot().LoadedAt(collection)),
		zap.Error(err),
	)
	return fmt.Errorf("failed to load %s: %w", collection, err)
}

// LoadedAt reports when a collection was last loaded successfully
func (s *RelationshipService) LoadedAt(collection string) time.Time {
	return s.cache.Snapshot().LoadedAt(collection)
}
