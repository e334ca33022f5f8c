// Package badgerstore keeps documents in an embedded BadgerDB.
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"familytree/internal/docstore"
)

// Config holds configuration for the BadgerDB instance.
type Config struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence). Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives BadgerDB's internal logging. Nil disables it.
	Logger *zap.Logger
}

// Store keys documents as "collection/id".
type Store struct {
	db *badger.DB
}

var _ docstore.Store = (*Store)(nil)

// badgerLogger adapts zap to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{})   { l.logger.Errorf(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...interface{}) { l.logger.Warnf(format, args...) }
func (l *badgerLogger) Infof(format string, args ...interface{})    { l.logger.Debugf(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...interface{})   { l.logger.Debugf(format, args...) }

// Open creates and opens the database described by cfg.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger.Sugar()})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a throwaway in-memory store.
func OpenInMemory() (*Store, error) {
	return Open(Config{InMemory: true})
}

func key(collection, id string) []byte {
	return []byte(collection + "/" + id)
}

func put(txn *badger.Txn, collection, id string, fields docstore.Fields) error {
	b, err := docstore.Encode(fields)
	if err != nil {
		return err
	}
	return txn.Set(key(collection, id), b)
}

func get(txn *badger.Txn, collection, id string) (docstore.Fields, error) {
	item, err := txn.Get(key(collection, id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s/%s: %w", collection, id, err)
	}
	b, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	return docstore.Decode(b)
}

func (s *Store) Insert(_ context.Context, collection string, fields docstore.Fields) (string, error) {
	id := docstore.NewID()
	err := s.db.Update(func(txn *badger.Txn) error {
		return put(txn, collection, id, fields)
	})
	if err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}
	return id, nil
}

func (s *Store) Get(_ context.Context, collection, id string) (docstore.Document, error) {
	var fields docstore.Fields
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		fields, err = get(txn, collection, id)
		return err
	})
	if err != nil {
		return docstore.Document{}, err
	}
	return docstore.Document{ID: id, Fields: fields}, nil
}

func (s *Store) FindEqual(ctx context.Context, collection, field string, value any) ([]docstore.Document, error) {
	return s.scan(ctx, collection, func(fields docstore.Fields) bool {
		return docstore.Matches(fields, field, value)
	})
}

func (s *Store) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	return s.scan(ctx, collection, func(docstore.Fields) bool { return true })
}

func (s *Store) scan(ctx context.Context, collection string, keep func(docstore.Fields) bool) ([]docstore.Document, error) {
	prefix := []byte(collection + "/")
	var docs []docstore.Document
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			b, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			fields, err := docstore.Decode(b)
			if err != nil {
				return err
			}
			if keep(fields) {
				id := string(item.Key()[len(prefix):])
				docs = append(docs, docstore.Document{ID: id, Fields: fields})
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", collection, err)
	}
	return docs, nil
}

func (s *Store) Merge(ctx context.Context, collection, id string, fields docstore.Fields) error {
	return s.Apply(ctx, []docstore.Mutation{{Collection: collection, ID: id, Fields: fields}})
}

func (s *Store) Put(_ context.Context, collection, id string, fields docstore.Fields) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return put(txn, collection, id, fields)
	})
}

// Apply runs every merge inside one badger transaction.
func (s *Store) Apply(_ context.Context, mutations []docstore.Mutation) error {
	if len(mutations) == 0 {
		return nil
	}
	return s.db.Update(func(txn *badger.Txn) error {
		for _, m := range mutations {
			current, err := get(txn, m.Collection, m.ID)
			if err != nil {
				return err
			}
			if err := put(txn, m.Collection, m.ID, docstore.Merged(current, m.Fields)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}
