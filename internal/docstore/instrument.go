package docstore

import (
	"context"
	"errors"

	"familytree/internal/metrics"
)

// Instrumented wraps a store so that every call is counted per backend.
type Instrumented struct {
	backend string
	next    Store
}

var _ Store = (*Instrumented)(nil)

// Instrument wraps next, labelling its metrics with backend.
func Instrument(backend string, next Store) *Instrumented {
	return &Instrumented{backend: backend, next: next}
}

func (s *Instrumented) observe(op string, err error) {
	result := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	metrics.DocstoreOperations.WithLabelValues(s.backend, op, result).Inc()
}

func (s *Instrumented) Insert(ctx context.Context, collection string, fields Fields) (string, error) {
	id, err := s.next.Insert(ctx, collection, fields)
	s.observe("insert", err)
	return id, err
}

func (s *Instrumented) Get(ctx context.Context, collection, id string) (Document, error) {
	doc, err := s.next.Get(ctx, collection, id)
	s.observe("get", err)
	return doc, err
}

func (s *Instrumented) FindEqual(ctx context.Context, collection, field string, value any) ([]Document, error) {
	docs, err := s.next.FindEqual(ctx, collection, field, value)
	s.observe("find", err)
	return docs, err
}

func (s *Instrumented) List(ctx context.Context, collection string) ([]Document, error) {
	docs, err := s.next.List(ctx, collection)
	s.observe("list", err)
	return docs, err
}

func (s *Instrumented) Merge(ctx context.Context, collection, id string, fields Fields) error {
	err := s.next.Merge(ctx, collection, id, fields)
	s.observe("merge", err)
	return err
}

func (s *Instrumented) Put(ctx context.Context, collection, id string, fields Fields) error {
	err := s.next.Put(ctx, collection, id, fields)
	s.observe("put", err)
	return err
}

func (s *Instrumented) Apply(ctx context.Context, mutations []Mutation) error {
	err := s.next.Apply(ctx, mutations)
	s.observe("apply", err)
	return err
}

func (s *Instrumented) Close() error {
	return s.next.Close()
}
