package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TxBeginner is implemented by pools and connections.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// SnapshotOptions is a read-only repeatable read transaction: every query
// inside it observes the same snapshot.
var SnapshotOptions = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

// WithTx executes fn within a RepeatableRead read-write transaction.
func WithTx(ctx context.Context, db TxBeginner, fn func(pgx.Tx) error) error {
	return run(ctx, db, pgx.TxOptions{IsoLevel: pgx.RepeatableRead}, fn)
}

// WithSnapshot executes fn within a read-only RepeatableRead transaction.
func WithSnapshot(ctx context.Context, db TxBeginner, fn func(pgx.Tx) error) error {
	return run(ctx, db, SnapshotOptions, fn)
}

func run(ctx context.Context, db TxBeginner, opts pgx.TxOptions, fn func(pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit tx: %w", err)
	}

	return nil
}
