package models

import "time"

// Lifecycle is the archival state of a stored record
type Lifecycle string

const (
	Active   Lifecycle = "active"
	Archived Lifecycle = "archived"
)

// Record holds the metadata shared by every stored entity.
// Archiving flips IsActive and stamps DeletedAt; records are never removed.
type Record struct {
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	CreatedBy string     `json:"createdBy,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// Lifecycle reports whether the record is active or archived
func (r Record) Lifecycle() Lifecycle {
	if r.IsActive {
		return Active
	}
	return Archived
}

// NewRecord returns metadata for a freshly created active record
func NewRecord(createdBy string, now time.Time) Record {
	return Record{IsActive: true, CreatedAt: now, CreatedBy: createdBy}
}
