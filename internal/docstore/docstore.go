// Package docstore defines the document store the relationship records live in.
//
// A store holds named collections of JSON documents keyed by opaque ids. It
// supports inserting with a generated id, fetching by id, equality lookups on a
// top-level field, partial merges and atomic batches of merges.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/google/uuid"
)

// Collection names.
const (
	People        = "people_v2"
	Families      = "families_v2"
	Relationships = "family_relationships_v2"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Fields is a document body keyed by camelCase field name.
type Fields map[string]any

// Document is a stored document together with its id.
type Document struct {
	ID     string
	Fields Fields
}

// Mutation is one merge inside an Apply batch.
type Mutation struct {
	Collection string
	ID         string
	Fields     Fields
}

// Store is the capability set every backend provides.
type Store interface {
	Insert(ctx context.Context, collection string, fields Fields) (string, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	FindEqual(ctx context.Context, collection, field string, value any) ([]Document, error)
	List(ctx context.Context, collection string) ([]Document, error)
	Merge(ctx context.Context, collection, id string, fields Fields) error
	Put(ctx context.Context, collection, id string, fields Fields) error
	// Apply merges every mutation or none of them.
	Apply(ctx context.Context, mutations []Mutation) error
	Close() error
}

// NewID returns a fresh document id.
func NewID() string {
	return uuid.NewString()
}

// Encode serialises a document body.
func Encode(fields Fields) ([]byte, error) {
	if fields == nil {
		fields = Fields{}
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return b, nil
}

// Decode parses a stored document body.
func Decode(b []byte) (Fields, error) {
	var fields Fields
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if fields == nil {
		fields = Fields{}
	}
	return fields, nil
}

// Merged returns a copy of base with patch applied on top.
func Merged(base, patch Fields) Fields {
	out := make(Fields, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Normalize converts a value into the shape it takes after a JSON round trip,
// so that query values compare equal to decoded document fields.
func Normalize(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

// Matches reports whether a decoded document has field equal to value.
func Matches(fields Fields, field string, value any) bool {
	got, ok := fields[field]
	if !ok {
		return false
	}
	return reflect.DeepEqual(got, Normalize(value))
}

// IsActive reports whether a document carries isActive == true.
func IsActive(fields Fields) bool {
	active, _ := fields["isActive"].(bool)
	return active
}
