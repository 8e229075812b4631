package db

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// DBTX is what the SQLite repositories query through. Both the pooled
// *sqlx.DB and the *sqlx.Tx handed out by WithinTx satisfy it, so the same
// order repository serves plain reads and transactional saves, and
// sqlx.GetContext and sqlx.SelectContext accept it directly.
type DBTX interface {
	sqlx.ExtContext
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sqlx.DB)(nil)
	_ DBTX = (*sqlx.Tx)(nil)
)
