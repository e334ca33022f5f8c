// Package sqlstore keeps documents in a single SQL table through internal/database.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"familytree/internal/database"
	"familytree/internal/docstore"
)

// Store persists documents as JSON payload rows of the documents table.
type Store struct {
	db *database.DB
}

var _ docstore.Store = (*Store)(nil)

// New wraps an opened and migrated database.
func New(db *database.DB) *Store {
	return &Store{db: db}
}

func (s *Store) upsert(ctx context.Context, q database.DBTX, collection, id string, fields docstore.Fields) error {
	payload, err := docstore.Encode(fields)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, q.GetDialect().UpsertDocumentQuery(), collection, id, docstore.IsActive(fields), string(payload))
	if err != nil {
		return fmt.Errorf("failed to write document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) load(ctx context.Context, q database.DBTX, collection, id string) (docstore.Fields, error) {
	var payload string
	err := q.QueryRowContext(ctx, "SELECT payload FROM documents WHERE collection = ? AND id = ?", collection, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s/%s: %w", collection, id, err)
	}
	return docstore.Decode([]byte(payload))
}

func (s *Store) Insert(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	id := docstore.NewID()
	if err := s.upsert(ctx, s.db, collection, id, fields); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	fields, err := s.load(ctx, s.db, collection, id)
	if err != nil {
		return docstore.Document{}, err
	}
	return docstore.Document{ID: id, Fields: fields}, nil
}

// FindEqual pushes isActive == true down to the is_active column and filters
// every other predicate after decoding.
func (s *Store) FindEqual(ctx context.Context, collection, field string, value any) ([]docstore.Document, error) {
	query := "SELECT id, payload FROM documents WHERE collection = ?"
	if active, ok := value.(bool); ok && field == "isActive" && active {
		query += " AND is_active = " + s.db.Dialect.BoolValue(true)
	}
	docs, err := s.query(ctx, query+" ORDER BY created_at, id", collection)
	if err != nil {
		return nil, err
	}
	out := docs[:0]
	for _, doc := range docs {
		if docstore.Matches(doc.Fields, field, value) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *Store) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	return s.query(ctx, "SELECT id, payload FROM documents WHERE collection = ? ORDER BY created_at, id", collection)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]docstore.Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		fields, err := docstore.Decode([]byte(payload))
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", id, err)
		}
		docs = append(docs, docstore.Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}

func (s *Store) Merge(ctx context.Context, collection, id string, fields docstore.Fields) error {
	return s.Apply(ctx, []docstore.Mutation{{Collection: collection, ID: id, Fields: fields}})
}

func (s *Store) Put(ctx context.Context, collection, id string, fields docstore.Fields) error {
	return s.upsert(ctx, s.db, collection, id, fields)
}

// Apply runs every merge inside one transaction.
func (s *Store) Apply(ctx context.Context, mutations []docstore.Mutation) error {
	if len(mutations) == 0 {
		return nil
	}
	return s.db.InTx(ctx, func(tx *database.Tx) error {
		for _, m := range mutations {
			current, err := s.load(ctx, tx, m.Collection, m.ID)
			if err != nil {
				return err
			}
			if err := s.upsert(ctx, tx, m.Collection, m.ID, docstore.Merged(current, m.Fields)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}
