package testutil

import (
	"testing"

	"github.com/alexanderramin/ordertree/internal/db"
	"github.com/jmoiron/sqlx"
)

// NewTestDB opens a migrated in-memory store that is closed with the test.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

// NewTestUoW returns the transactional boundary used by the services.
func NewTestUoW(database *sqlx.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}

// CountRows counts the rows of table, for asserting that cascades and
// rollbacks reached the schema.
func CountRows(t *testing.T, database *sqlx.DB, table string) int {
	t.Helper()
	var n int
	if err := database.Get(&n, "SELECT COUNT(*) FROM "+table); err != nil {
		t.Fatalf("counting %s: %v", table, err)
	}
	return n
}
