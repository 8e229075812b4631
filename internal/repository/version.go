package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/ordertree/internal/db"
	"github.com/alexanderramin/ordertree/internal/domain"
	"github.com/jmoiron/sqlx"
)

// versionedTables maps the tables carrying a version column to the entity
// name used in errors.
var versionedTables = map[string]string{
	"order_elements": "order",
	"label_types":    "label type",
}

// CheckVersion compares expected with the stored version of row id. It runs
// before any write so a mismatch leaves the store untouched.
func CheckVersion(ctx context.Context, q db.DBTX, table, id string, expected int64) error {
	entity, ok := versionedTables[table]
	if !ok {
		return fmt.Errorf("table %q is not versioned", table)
	}
	var stored int64
	err := sqlx.GetContext(ctx, q, &stored, `SELECT version FROM `+table+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("reading %s version: %w", entity, err)
	}
	if stored != expected {
		return &domain.ConcurrentModificationError{Entity: entity, ID: id, Expected: expected, Actual: stored}
	}
	return nil
}
