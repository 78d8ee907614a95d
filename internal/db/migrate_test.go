package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDB_AppliesMigrations(t *testing.T) {
	database, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	for _, table := range []string{"orders", "order_types", "approval_steps", "calendar_days", "users"} {
		var name string
		err := database.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_Rerunnable(t *testing.T) {
	database, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, Migrate(database))

	// Seed rows must not duplicate on re-run.
	var count int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM order_types`).Scan(&count))
	assert.Equal(t, 3, count)
}

func TestOpenDB_EnforcesStatusCheck(t *testing.T) {
	database, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	_, err = database.Exec(`INSERT INTO orders (reference, type_id, created_at, updated_at)
		VALUES ('T-1', 1, '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, err = database.Exec(`INSERT INTO approval_steps
		(order_id, receipt_date, deadline, recipient_role, recipient_name, status)
		VALUES (1, '2025-01-01T00:00:00Z', '2025-01-05', 'technologist', 'Ivanova', 'bogus')`)
	assert.Error(t, err, "status CHECK constraint should reject unknown values")
}
