package testutil

import (
	"database/sql"
	"testing"

	"github.com/apetrov/orderflow/internal/db"
)

// NewTestDB returns an in-memory database carrying the full orderflow
// schema, including the seeded order types. Closed via t.Cleanup.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestUoW wraps the test database in a real transactional
// UnitOfWork, for exercising approval transitions end to end.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}
