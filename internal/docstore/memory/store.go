// Package memory is an in-process document store backed by maps.
package memory

import (
	"context"
	"fmt"
	"sync"

	"familytree/internal/docstore"
)

// Store keeps encoded documents per collection.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
	order       map[string][]string
}

var _ docstore.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		collections: make(map[string]map[string][]byte),
		order:       make(map[string][]string),
	}
}

func (s *Store) write(collection, id string, fields docstore.Fields) error {
	b, err := docstore.Encode(fields)
	if err != nil {
		return err
	}
	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string][]byte)
		s.collections[collection] = docs
	}
	if _, exists := docs[id]; !exists {
		s.order[collection] = append(s.order[collection], id)
	}
	docs[id] = b
	return nil
}

func (s *Store) read(collection, id string) (docstore.Fields, error) {
	b, ok := s.collections[collection][id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
	}
	return docstore.Decode(b)
}

func (s *Store) Insert(_ context.Context, collection string, fields docstore.Fields) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := docstore.NewID()
	if err := s.write(collection, id, fields); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Get(_ context.Context, collection, id string) (docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fields, err := s.read(collection, id)
	if err != nil {
		return docstore.Document{}, err
	}
	return docstore.Document{ID: id, Fields: fields}, nil
}

func (s *Store) FindEqual(ctx context.Context, collection, field string, value any) ([]docstore.Document, error) {
	all, err := s.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	var out []docstore.Document
	for _, doc := range all {
		if docstore.Matches(doc.Fields, field, value) {
			out = append(out, doc)
		}
	}
	return out, nil
}

// List returns documents in insertion order.
func (s *Store) List(_ context.Context, collection string) ([]docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.order[collection]
	out := make([]docstore.Document, 0, len(ids))
	for _, id := range ids {
		fields, err := s.read(collection, id)
		if err != nil {
			return nil, err
		}
		out = append(out, docstore.Document{ID: id, Fields: fields})
	}
	return out, nil
}

func (s *Store) Merge(ctx context.Context, collection, id string, fields docstore.Fields) error {
	return s.Apply(ctx, []docstore.Mutation{{Collection: collection, ID: id, Fields: fields}})
}

func (s *Store) Put(_ context.Context, collection, id string, fields docstore.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(collection, id, fields)
}

// Apply validates every target before writing any of them.
func (s *Store) Apply(_ context.Context, mutations []docstore.Mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make(map[[2]string]docstore.Fields, len(mutations))
	keys := make([][2]string, 0, len(mutations))
	for _, m := range mutations {
		key := [2]string{m.Collection, m.ID}
		current, ok := staged[key]
		if !ok {
			var err error
			if current, err = s.read(m.Collection, m.ID); err != nil {
				return err
			}
			keys = append(keys, key)
		}
		staged[key] = docstore.Merged(current, m.Fields)
	}
	for _, key := range keys {
		if err := s.write(key[0], key[1], staged[key]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error { return nil }
