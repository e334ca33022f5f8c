package database

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

// PostgresDialect stores documents in PostgreSQL, payloads as TEXT JSON
// keyed by (collection, id)
type PostgresDialect struct{}

// NewPostgresDialect creates a new PostgreSQL dialect
func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

// DSN is DATABASE_URL as given; lib/pq accepts both URL and key=value forms
func (d *PostgresDialect) DSN(config DialectConfig) string {
	return config.URL
}

// RewriteQuery numbers the document store's ? placeholders as $1, $2, ...
func (d *PostgresDialect) RewriteQuery(query string) string {
	return rewritePlaceholdersToNumbered(query)
}

// ConfigureConnection sizes the pool for short document reads and writes
func (d *PostgresDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
	return nil
}

func (d *PostgresDialect) MigrationsSubdir() string {
	return "postgres"
}

func (d *PostgresDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGSERIAL PRIMARY KEY,
			filename TEXT UNIQUE NOT NULL,
			executed_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);
	`
}

func (d *PostgresDialect) BoolValue(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// UpsertDocumentQuery replaces a document's payload and active flag when
// (collection, id) already exists; created_at keeps its first value
func (d *PostgresDialect) UpsertDocumentQuery() string {
	return `INSERT INTO documents (collection, id, is_active, payload) VALUES (?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET
			is_active = EXCLUDED.is_active,
			payload = EXCLUDED.payload,
			updated_at = CURRENT_TIMESTAMP`
}
