package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, "sqlite", DialectConfig{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations(ctx, zap.NewNop()))
	return db
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()

	var name string
	err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", "documents").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "documents", name)

	// Running again is a no-op
	require.NoError(t, db.RunMigrations(ctx, zap.NewNop()))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

// TestDatabaseTransactions tests transaction support
func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()
	upsert := db.Dialect.UpsertDocumentQuery()

	err := db.InTx(ctx, func(tx *Tx) error {
		_, err := tx.ExecContext(ctx, upsert, "people_v2", "p1", true, `{"firstName":"Ann"}`)
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = db.InTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, upsert, "people_v2", "p2", true, `{"firstName":"Bob"}`); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&count))
	assert.Equal(t, 1, count, "rolled back insert must not persist")

	// Upsert replaces the payload
	_, err = db.ExecContext(ctx, upsert, "people_v2", "p1", false, `{"firstName":"Anne"}`)
	require.NoError(t, err)

	var payload string
	var active bool
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT payload, is_active FROM documents WHERE collection = ? AND id = ?", "people_v2", "p1").Scan(&payload, &active))
	assert.Equal(t, `{"firstName":"Anne"}`, payload)
	assert.False(t, active)
}
