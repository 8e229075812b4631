package testutil

import (
	"context"
	"database/sql"
	"sync/atomic"

	"github.com/alexanderramin/ordertree/internal/db"
	"github.com/jmoiron/sqlx"
)

// FailOnNthExecUoW injects Err on the Nth write of each transaction, counting
// from 1. Reads pass through, so version checks still see the store.
type FailOnNthExecUoW struct {
	DB     *sqlx.DB
	FailOn int32
	Err    error

	// Writes counts the writes issued by the most recent transaction.
	Writes atomic.Int32
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	u.Writes.Store(0)
	wrap := func(tx db.DBTX) db.DBTX {
		return &failOnNthExec{DBTX: tx, uow: u}
	}
	return db.RunTx(ctx, u.DB, wrap, fn)
}

type failOnNthExec struct {
	db.DBTX
	uow *FailOnNthExecUoW
}

func (f *failOnNthExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.uow.Writes.Add(1) == f.uow.FailOn {
		return nil, f.uow.Err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}

// FailCommitUoW runs the body against a real transaction and then fails as a
// commit error would: every write is rolled back and Err is returned.
type FailCommitUoW struct {
	DB  *sqlx.DB
	Err error
}

func (u *FailCommitUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return db.RunTx(ctx, u.DB, nil, func(ctx context.Context, tx db.DBTX) error {
		if err := fn(ctx, tx); err != nil {
			return err
		}
		return u.Err
	})
}
