// Package cache holds the in-memory view of the active records.
//
// Each collection is replaced wholesale by a successful load and stays valid
// until the next one; a failed load leaves the previous contents in place.
package cache

import (
	"sync"
	"time"

	"familytree/internal/docstore"
	"familytree/internal/models"
)

// Snapshot is an immutable view of the cache. Callers must not modify the
// slices it exposes.
type Snapshot struct {
	People        []models.Person
	Families      []models.Family
	Relationships []models.Relationship

	loadedAt     map[string]time.Time
	peopleByID   map[string]int
	familiesByID map[string]int
}

// Person looks up a cached person by id
func (s *Snapshot) Person(id string) (*models.Person, bool) {
	i, ok := s.peopleByID[id]
	if !ok {
		return nil, false
	}
	p := s.People[i]
	return &p, true
}

// Family looks up a cached family by id
func (s *Snapshot) Family(id string) (*models.Family, bool) {
	i, ok := s.familiesByID[id]
	if !ok {
		return nil, false
	}
	f := s.Families[i]
	return &f, true
}

// LoadedAt returns when a collection was last loaded successfully, or the
// zero time if it never was.
func (s *Snapshot) LoadedAt(collection string) time.Time {
	return s.loadedAt[collection]
}

// Cache publishes snapshots; writers copy the current snapshot, swap one
// collection and publish the result.
type Cache struct {
	mu   sync.RWMutex
	snap *Snapshot
}

// New returns an empty cache
func New() *Cache {
	return &Cache{snap: &Snapshot{
		loadedAt:     map[string]time.Time{},
		peopleByID:   map[string]int{},
		familiesByID: map[string]int{},
	}}
}

// Snapshot returns the current view
func (c *Cache) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

func (c *Cache) update(collection string, at time.Time, apply func(next *Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := *c.snap
	next.loadedAt = make(map[string]time.Time, len(c.snap.loadedAt)+1)
	for k, v := range c.snap.loadedAt {
		next.loadedAt[k] = v
	}
	next.loadedAt[collection] = at
	apply(&next)
	c.snap = &next
}

// SetPeople replaces the cached people
func (c *Cache) SetPeople(people []models.Person, at time.Time) {
	index := make(map[string]int, len(people))
	for i, p := range people {
		index[p.ID] = i
	}
	c.update(docstore.People, at, func(next *Snapshot) {
		next.People = people
		next.peopleByID = index
	})
}

// SetFamilies replaces the cached families
func (c *Cache) SetFamilies(families []models.Family, at time.Time) {
	index := make(map[string]int, len(families))
	for i, f := range families {
		index[f.ID] = i
	}
	c.update(docstore.Families, at, func(next *Snapshot) {
		next.Families = families
		next.familiesByID = index
	})
}

// SetRelationships replaces the cached relationships
func (c *Cache) SetRelationships(relationships []models.Relationship, at time.Time) {
	c.update(docstore.Relationships, at, func(next *Snapshot) {
		next.Relationships = relationships
	})
}
