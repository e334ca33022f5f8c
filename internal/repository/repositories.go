package repository

import (
	"context"
	"fmt"
	"time"

	"familytree/internal/docstore"
)

// Repositories bundles the per-collection repositories over one store
type Repositories struct {
	People        *PersonRepository
	Families      *FamilyRepository
	Relationships *RelationshipRepository
	store         docstore.Store
}

// New creates the repositories for a store
func New(store docstore.Store) *Repositories {
	return &Repositories{
		People:        NewPersonRepository(store),
		Families:      NewFamilyRepository(store),
		Relationships: NewRelationshipRepository(store),
		store:         store,
	}
}

// ArchiveFamily archives a family together with the given relationships in
// one atomic batch. Either every record is archived or none is.
func (r *Repositories) ArchiveFamily(ctx context.Context, familyID string, relationshipIDs []string, now time.Time) error {
	mutations := make([]docstore.Mutation, 0, len(relationshipIDs)+1)
	mutations = append(mutations, archiveMutation(docstore.Families, familyID, now))
	for _, id := range relationshipIDs {
		mutations = append(mutations, archiveMutation(docstore.Relationships, id, now))
	}
	if err := r.store.Apply(ctx, mutations); err != nil {
		return fmt.Errorf("failed to archive family: %w", err)
	}
	return nil
}
