package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"familytree/internal/docstore"
)

// BackupVersion is written into every export
const BackupVersion = "2.0"

// BackupData is the complete export of the three collections, archived
// records included
type BackupData struct {
	Version       string           `json:"version"`
	ExportedAt    time.Time        `json:"exportedAt"`
	People        []BackupDocument `json:"people"`
	Families      []BackupDocument `json:"families"`
	Relationships []BackupDocument `json:"relationships"`
}

// BackupDocument is one stored document with its original id
type BackupDocument struct {
	ID     string          `json:"id"`
	Fields docstore.Fields `json:"fields"`
}

// BackupStats counts the documents in a backup
type BackupStats struct {
	People        int
	Families      int
	Relationships int
}

// BackupService handles export and restore of the document store
type BackupService struct {
	store  docstore.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewBackupService creates a new backup service
func NewBackupService(store docstore.Store, logger *zap.Logger) *BackupService {
	return &BackupService{store: store, logger: logger, now: time.Now}
}

func (s *BackupService) collections(b *BackupData) []struct {
	name string
	docs *[]BackupDocument
} {
	return []struct {
		name string
		docs *[]BackupDocument
	}{
		{docstore.People, &b.People},
		{docstore.Families, &b.Families},
		{docstore.Relationships, &b.Relationships},
	}
}

// Export writes every document as JSON to w
func (s *BackupService) Export(ctx context.Context, w io.Writer) (*BackupStats, error) {
	backup := &BackupData{Version: BackupVersion, ExportedAt: s.now().UTC()}

	for _, c := range s.collections(backup) {
		docs, err := s.store.List(ctx, c.name)
		if err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", c.name, err)
		}
		out := make([]BackupDocument, 0, len(docs))
		for _, d := range docs {
			out = append(out, BackupDocument{ID: d.ID, Fields: d.Fields})
		}
		*c.docs = out
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to write backup: %w", err)
	}

	stats := backup.stats()
	s.logger.Info("backup exported",
		zap.Int("people", stats.People),
		zap.Int("families", stats.Families),
		zap.Int("relationships", stats.Relationships),
	)
	return stats, nil
}

// Import upserts every document of a backup under its original id
func (s *BackupService) Import(ctx context.Context, r io.Reader) (*BackupStats, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("failed to parse backup: %w", err)
	}
	s.logger.Info("importing backup",
		zap.String("version", backup.Version),
		zap.Time("exported_at", backup.ExportedAt),
	)

	for _, c := range s.collections(&backup) {
		for _, d := range *c.docs {
			if d.ID == "" {
				return nil, fmt.Errorf("backup document in %s has no id", c.name)
			}
			if err := s.store.Put(ctx, c.name, d.ID, d.Fields); err != nil {
				return nil, fmt.Errorf("failed to import %s/%s: %w", c.name, d.ID, err)
			}
		}
	}

	stats := backup.stats()
	s.logger.Info("backup imported",
		zap.Int("people", stats.People),
		zap.Int("families", stats.Families),
		zap.Int("relationships", stats.Relationships),
	)
	return stats, nil
}

func (b *BackupData) stats() *BackupStats {
	return &BackupStats{
		People:        len(b.People),
		Families:      len(b.Families),
		Relationships: len(b.Relationships),
	}
}
