package main

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/kpinetwork/backend-sub000/internal/permissions"
	"github.com/kpinetwork/backend-sub000/internal/platform/db"
	"github.com/kpinetwork/backend-sub000/internal/quarters"
)

// snapshotBuilder builds each report against one read-only snapshot so every
// repository fetch of a request sees the same data.
type snapshotBuilder struct {
	db   db.TxBeginner
	opts quarters.Options
}

func (b snapshotBuilder) Build(ctx context.Context, req quarters.Request) (quarters.Report, error) {
	var report quarters.Report
	err := db.WithSnapshot(ctx, b.db, func(tx pgx.Tx) error {
		svc := quarters.NewService(quarters.NewPostgresRepository(tx), permissions.NewService(tx), b.opts)
		var err error
		report, err = svc.Build(ctx, req)
		return err
	})
	return report, err
}
