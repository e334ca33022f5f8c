package database

import (
	"database/sql"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// MySQLDialect stores documents in MySQL. Payloads are LONGTEXT JSON keyed
// by (collection, id).
type MySQLDialect struct{}

// NewMySQLDialect creates a new MySQL dialect
func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

func (d *MySQLDialect) DriverName() string {
	return "mysql"
}

// DSN forces utf8mb4 unless DATABASE_URL names a charset, so names and
// notes outside the Basic Multilingual Plane survive. A DSN the driver
// cannot parse is passed through for sql.Open to reject.
func (d *MySQLDialect) DSN(config DialectConfig) string {
	dsn := config.URL
	if _, err := mysql.ParseDSN(dsn); err != nil {
		return dsn
	}
	_, query, hasQuery := strings.Cut(dsn[strings.LastIndex(dsn, "/")+1:], "?")
	if params, err := url.ParseQuery(query); err == nil && params.Has("charset") {
		return dsn
	}
	if hasQuery {
		return dsn + "&charset=utf8mb4"
	}
	return dsn + "?charset=utf8mb4"
}

func (d *MySQLDialect) RewriteQuery(query string) string {
	return query
}

// ConfigureConnection sizes the pool for short document reads and writes.
// Idle connections are recycled before MySQL's wait_timeout drops them.
func (d *MySQLDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
	return nil
}

func (d *MySQLDialect) MigrationsSubdir() string {
	return "mysql"
}

func (d *MySQLDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			executed_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
		);
	`
}

func (d *MySQLDialect) BoolValue(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// UpsertDocumentQuery replaces a document's payload and active flag in
// place. The (collection, id) primary key is the duplicate key; created_at
// keeps its first value.
func (d *MySQLDialect) UpsertDocumentQuery() string {
	return "INSERT INTO documents (collection, id, is_active, payload) VALUES (?, ?, ?, ?) " +
		"ON DUPLICATE KEY UPDATE is_active = VALUES(is_active), payload = VALUES(payload), " +
		"updated_at = CURRENT_TIMESTAMP(6)"
}
