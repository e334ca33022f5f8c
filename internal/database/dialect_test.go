package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectFor(t *testing.T) {
	tests := []struct {
		driver  string
		want    string
		wantErr bool
	}{
		{driver: "", want: "sqlite3"},
		{driver: "sqlite", want: "sqlite3"},
		{driver: "PostgreSQL", want: "postgres"},
		{driver: "mysql", want: "mysql"},
		{driver: "oracle", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			dialect, err := DialectFor(tt.driver)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, dialect.DriverName())
		})
	}
}

func TestDialectMigrationsSubdir(t *testing.T) {
	assert.Equal(t, "sqlite", NewSQLiteDialect().MigrationsSubdir())
	assert.Equal(t, "postgres", NewPostgresDialect().MigrationsSubdir())
	assert.Equal(t, "mysql", NewMySQLDialect().MigrationsSubdir())
}

func TestSQLiteDSN(t *testing.T) {
	d := NewSQLiteDialect()
	assert.Equal(t, "tree.db?_busy_timeout=5000&_txlock=immediate", d.DSN(DialectConfig{Path: "tree.db"}))
	assert.Equal(t, "file::memory:?cache=shared", d.DSN(DialectConfig{Path: "file::memory:?cache=shared"}))
}

func TestMySQLDSN(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "charset added", url: "tree:pw@tcp(db:3306)/familytree", want: "tree:pw@tcp(db:3306)/familytree?charset=utf8mb4"},
		{name: "appended to params", url: "tree:pw@tcp(db:3306)/familytree?parseTime=true", want: "tree:pw@tcp(db:3306)/familytree?parseTime=true&charset=utf8mb4"},
		{name: "explicit charset kept", url: "tree:pw@tcp(db:3306)/familytree?charset=latin1", want: "tree:pw@tcp(db:3306)/familytree?charset=latin1"},
		{name: "unparseable passes through", url: "not a dsn", want: "not a dsn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewMySQLDialect().DSN(DialectConfig{URL: tt.url}))
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	url := "postgres://tree:pw@db:5432/familytree?sslmode=disable"
	assert.Equal(t, url, NewPostgresDialect().DSN(DialectConfig{URL: url}))
}

func TestBoolValue(t *testing.T) {
	assert.Equal(t, "1", NewSQLiteDialect().BoolValue(true))
	assert.Equal(t, "0", NewSQLiteDialect().BoolValue(false))
	assert.Equal(t, "TRUE", NewPostgresDialect().BoolValue(true))
	assert.Equal(t, "FALSE", NewMySQLDialect().BoolValue(false))
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT payload FROM documents WHERE collection = ? AND id = ?",
			expected: "SELECT payload FROM documents WHERE collection = ? AND id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT payload FROM documents WHERE collection = ?",
			expected: "SELECT payload FROM documents WHERE collection = $1",
		},
		{
			name:     "PostgreSQL upsert",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO documents (collection, id, is_active, payload) VALUES (?, ?, ?, ?)",
			expected: "INSERT INTO documents (collection, id, is_active, payload) VALUES ($1, $2, $3, $4)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE documents SET payload = ? WHERE collection = ? AND id = ?",
			expected: "UPDATE documents SET payload = ? WHERE collection = ? AND id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.dialect.RewriteQuery(tt.query))
		})
	}
}

func TestSplitStatements(t *testing.T) {
	got := SplitStatements("CREATE TABLE a (x INT);\n\n  CREATE INDEX i ON a (x);\n")
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE INDEX i ON a (x)"}, got)
	assert.Empty(t, SplitStatements("  \n; ;"))
}
