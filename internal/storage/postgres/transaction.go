package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type ctxKey struct{}

// snapshotTxKey carries the open snapshot transaction through the
// context so that every document Put inside one run lands in it.
var snapshotTxKey ctxKey

// TransactionManager commits one run's document snapshot atomically.
// The persist step writes three documents per run; committing them
// together keeps readers from ever observing a half-written run.
type TransactionManager struct {
	db *sqlx.DB
}

func NewTransactionManager(db *sqlx.DB) *TransactionManager {
	return &TransactionManager{db: db}
}

func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := tm.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	txCtx := context.WithValue(ctx, snapshotTxKey, tx)

	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// executor returns the snapshot transaction from ctx when one is open,
// and the plain connection otherwise. Document writes outside a run
// transaction (single-document callers, tests) go straight to db.
func executor(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx, ok := ctx.Value(snapshotTxKey).(*sqlx.Tx); ok && tx != nil {
		return tx
	}
	return db
}
