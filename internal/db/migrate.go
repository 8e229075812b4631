package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Migrate runs all schema migrations.
func Migrate(db *sqlx.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillElementOrderIDs(db); err != nil {
		return fmt.Errorf("backfilling element order ids: %w", err)
	}
	if err := migrateMeasurementPositions(db); err != nil {
		return fmt.Errorf("rekeying advance measurements: %w", err)
	}
	return nil
}

// migrateMeasurementPositions rebuilds an advance_measurements table keyed
// by date into one keyed by position, numbering each assignment's rows in
// date order.
func migrateMeasurementPositions(db *sqlx.DB) error {
	ctx := context.Background()
	var hasPosition int
	err := db.GetContext(ctx, &hasPosition,
		`SELECT COUNT(*) FROM pragma_table_info('advance_measurements') WHERE name = 'position'`)
	if err != nil {
		return fmt.Errorf("inspecting advance_measurements: %w", err)
	}
	if hasPosition > 0 {
		return nil
	}
	return RunTx(ctx, db, nil, func(ctx context.Context, tx DBTX) error {
		steps := []string{
			`ALTER TABLE advance_measurements RENAME TO advance_measurements_legacy`,
			createAdvanceMeasurements,
			`INSERT INTO advance_measurements (assignment_id, position, date, value)
				SELECT assignment_id, ROW_NUMBER() OVER (PARTITION BY assignment_id ORDER BY date) - 1, date, value
				FROM advance_measurements_legacy`,
			`DROP TABLE advance_measurements_legacy`,
		}
		for _, stmt := range steps {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}

// migrateBackfillElementOrderIDs fills order_id on rows written before the
// column existed by walking up parent_id to the root.
func migrateBackfillElementOrderIDs(db *sqlx.DB) error {
	ctx := context.Background()
	var missing int
	if err := db.GetContext(ctx, &missing, `SELECT COUNT(*) FROM order_elements WHERE order_id = ''`); err != nil {
		return fmt.Errorf("counting elements without order: %w", err)
	}
	if missing == 0 {
		return nil
	}
	_, err := db.ExecContext(ctx, `
		WITH RECURSIVE lineage(id, root_id) AS (
			SELECT id, id FROM order_elements WHERE parent_id IS NULL
			UNION ALL
			SELECT e.id, l.root_id FROM order_elements e JOIN lineage l ON e.parent_id = l.id
		)
		UPDATE order_elements
		SET order_id = (SELECT root_id FROM lineage WHERE lineage.id = order_elements.id)
		WHERE order_id = ''`)
	if err != nil {
		return fmt.Errorf("updating order ids: %w", err)
	}
	return nil
}

const createAdvanceMeasurements = `CREATE TABLE IF NOT EXISTS advance_measurements (
		assignment_id TEXT NOT NULL REFERENCES advance_assignments(id) ON DELETE CASCADE,
		position      INTEGER NOT NULL,
		date          TEXT NOT NULL,
		value         TEXT NOT NULL,
		PRIMARY KEY (assignment_id, position)
	)`

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS order_elements (
		id                 TEXT PRIMARY KEY,
		parent_id          TEXT REFERENCES order_elements(id) ON DELETE CASCADE,
		kind               TEXT NOT NULL CHECK(kind IN ('order','group','line')),
		code               TEXT NOT NULL DEFAULT '',
		name               TEXT NOT NULL,
		description        TEXT NOT NULL DEFAULT '',
		init_date          TEXT,
		deadline           TEXT,
		work_hours         INTEGER NOT NULL DEFAULT 0,
		position           INTEGER NOT NULL DEFAULT 0,
		code_autogenerated INTEGER NOT NULL DEFAULT 0,
		version            INTEGER NOT NULL DEFAULT 0,
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_elements_parent ON order_elements(parent_id)`,

	// order_id and scheduling_state were added after the first release.
	`ALTER TABLE order_elements ADD COLUMN order_id TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE order_elements ADD COLUMN scheduling_state TEXT NOT NULL DEFAULT 'no_scheduled'`,
	`CREATE INDEX IF NOT EXISTS idx_order_elements_order ON order_elements(order_id)`,

	`CREATE TABLE IF NOT EXISTS hours_groups (
		id               TEXT PRIMARY KEY,
		element_id       TEXT NOT NULL REFERENCES order_elements(id) ON DELETE CASCADE,
		code             TEXT NOT NULL DEFAULT '',
		name             TEXT NOT NULL DEFAULT '',
		hours            INTEGER NOT NULL DEFAULT 0,
		fixed_percentage INTEGER NOT NULL DEFAULT 0,
		percentage       TEXT NOT NULL DEFAULT '0',
		position         INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_hours_groups_element ON hours_groups(element_id)`,

	`CREATE TABLE IF NOT EXISTS label_types (
		id                 TEXT PRIMARY KEY,
		code               TEXT NOT NULL DEFAULT '',
		name               TEXT NOT NULL,
		code_autogenerated INTEGER NOT NULL DEFAULT 0,
		version            INTEGER NOT NULL DEFAULT 0,
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_label_types_name ON label_types(name COLLATE NOCASE)`,
	`CREATE TABLE IF NOT EXISTS labels (
		id            TEXT PRIMARY KEY,
		label_type_id TEXT NOT NULL REFERENCES label_types(id) ON DELETE CASCADE,
		code          TEXT NOT NULL DEFAULT '',
		name          TEXT NOT NULL,
		position      INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_labels_type ON labels(label_type_id)`,
	`CREATE TABLE IF NOT EXISTS element_labels (
		element_id TEXT NOT NULL REFERENCES order_elements(id) ON DELETE CASCADE,
		label_id   TEXT NOT NULL REFERENCES labels(id) ON DELETE CASCADE,
		position   INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (element_id, label_id)
	)`,

	`CREATE TABLE IF NOT EXISTS criteria (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT 'generic' CHECK(type IN ('worker','machine','generic'))
	)`,
	`CREATE TABLE IF NOT EXISTS criterion_requirements (
		id           TEXT PRIMARY KEY,
		element_id   TEXT NOT NULL REFERENCES order_elements(id) ON DELETE CASCADE,
		criterion_id TEXT NOT NULL REFERENCES criteria(id) ON DELETE CASCADE,
		valid        INTEGER NOT NULL DEFAULT 1,
		position     INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_criterion_requirements_element ON criterion_requirements(element_id)`,

	`CREATE TABLE IF NOT EXISTS advance_types (
		id                TEXT PRIMARY KEY,
		name              TEXT NOT NULL UNIQUE,
		unit              TEXT NOT NULL DEFAULT '',
		default_max_value TEXT NOT NULL DEFAULT '100',
		percentage        INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS advance_assignments (
		id              TEXT PRIMARY KEY,
		element_id      TEXT NOT NULL REFERENCES order_elements(id) ON DELETE CASCADE,
		advance_type_id TEXT NOT NULL REFERENCES advance_types(id),
		report_global   INTEGER NOT NULL DEFAULT 0,
		max_value       TEXT NOT NULL,
		position        INTEGER NOT NULL DEFAULT 0,
		UNIQUE (element_id, advance_type_id)
	)`,
	createAdvanceMeasurements,

	// No cascade: deleting an element with work-report lines must fail.
	`CREATE TABLE IF NOT EXISTS work_report_lines (
		id         TEXT PRIMARY KEY,
		element_id TEXT NOT NULL REFERENCES order_elements(id),
		date       TEXT NOT NULL,
		hours      INTEGER NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_work_report_lines_element ON work_report_lines(element_id)`,
}
