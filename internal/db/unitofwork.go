package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TxFunc is the body of a transaction. Repositories built from tx see the
// writes made earlier in the same body.
type TxFunc func(ctx context.Context, tx DBTX) error

// UnitOfWork manages transactional boundaries. An order save runs its version
// check, code generation and every element write in one WithinTx call.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

// SQLiteUnitOfWork implements UnitOfWork using sqlx transactions.
type SQLiteUnitOfWork struct {
	db *sqlx.DB
}

// NewSQLiteUnitOfWork creates a UnitOfWork backed by the given *sqlx.DB.
func NewSQLiteUnitOfWork(db *sqlx.DB) *SQLiteUnitOfWork {
	return &SQLiteUnitOfWork{db: db}
}

func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	return RunTx(ctx, u.db, nil, fn)
}

// RunTx begins a transaction on conn and runs fn inside it. The transaction
// commits only when fn returns nil; errors and panics roll it back. A non-nil
// wrap decorates the tx handed to fn.
func RunTx(ctx context.Context, conn *sqlx.DB, wrap func(DBTX) DBTX, fn TxFunc) (err error) {
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		rbErr := tx.Rollback()
		if p := recover(); p != nil {
			panic(p)
		}
		if rbErr != nil && err != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
	}()

	var handle DBTX = tx
	if wrap != nil {
		handle = wrap(tx)
	}
	if err = fn(ctx, handle); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	committed = true
	return nil
}
