package db

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := OpenDB(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	// Migrations already ran in OpenDB; rerunning them is a no-op.
	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"order_elements", "hours_groups", "label_types", "labels", "element_labels",
		"criteria", "criterion_requirements", "advance_types", "advance_assignments",
		"advance_measurements", "work_report_lines",
	}
	for _, table := range expected {
		var name string
		err := db.Get(&name, `SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"idx_order_elements_parent",
		"idx_order_elements_order",
		"idx_hours_groups_element",
		"idx_label_types_name",
		"idx_labels_type",
		"idx_criterion_requirements_element",
		"idx_work_report_lines_element",
	}
	for _, idx := range expected {
		var name string
		err := db.Get(&name, `SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_ForeignKeysEnabled(t *testing.T) {
	db := openTestDB(t)

	var fk int
	require.NoError(t, db.Get(&fk, `PRAGMA foreign_keys`))
	assert.Equal(t, 1, fk, "foreign keys should be enabled")
}

func TestMigrate_WALModeRequested(t *testing.T) {
	// In-memory SQLite reports "memory"; WAL only applies to file DBs.
	db := openTestDB(t)

	var mode string
	require.NoError(t, db.Get(&mode, `PRAGMA journal_mode`))
	assert.Equal(t, "memory", mode)
}

func TestMigrate_WorkReportLinesBlockElementDelete(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO order_elements (id, order_id, kind, name, created_at, updated_at)
		VALUES ('o1', 'o1', 'order', 'Ship', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO order_elements (id, order_id, parent_id, kind, name, created_at, updated_at)
		VALUES ('l1', 'o1', 'o1', 'line', 'Plates', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO work_report_lines (id, element_id, date, hours, created_at)
		VALUES ('w1', 'l1', '2026-01-02', 4, '2026-01-02T00:00:00Z')`)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM order_elements WHERE id = 'o1'`)
	require.Error(t, err, "cascade must stop at work-report lines")

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM order_elements`))
	assert.Equal(t, 2, count)
}

func TestMigrate_LabelTypeNamesUniqueIgnoringCase(t *testing.T) {
	db := openTestDB(t)
	insert := `INSERT INTO label_types (id, name, created_at, updated_at) VALUES (?, ?, '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`

	_, err := db.Exec(insert, "lt1", "Priority")
	require.NoError(t, err)
	_, err = db.Exec(insert, "lt2", "PRIORITY")
	assert.Error(t, err)
}

func TestMigrate_RemovingAGroupCascadesToLinesAndHours(t *testing.T) {
	db := openTestDB(t)
	for _, stmt := range []string{
		`INSERT INTO order_elements (id, order_id, kind, name, created_at, updated_at)
			VALUES ('o1', 'o1', 'order', 'Ship', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`,
		`INSERT INTO order_elements (id, order_id, parent_id, kind, name, created_at, updated_at)
			VALUES ('g1', 'o1', 'o1', 'group', 'Hull', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`,
		`INSERT INTO order_elements (id, order_id, parent_id, kind, name, created_at, updated_at)
			VALUES ('l1', 'o1', 'g1', 'line', 'Plates', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`,
		`INSERT INTO hours_groups (id, element_id, name, hours) VALUES ('h1', 'l1', 'Plates', 10)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	_, err := db.Exec(`DELETE FROM order_elements WHERE id = 'g1'`)
	require.NoError(t, err)

	var elements, groups int
	require.NoError(t, db.Get(&elements, `SELECT COUNT(*) FROM order_elements`))
	require.NoError(t, db.Get(&groups, `SELECT COUNT(*) FROM hours_groups`))
	assert.Equal(t, 1, elements)
	assert.Zero(t, groups)
}
