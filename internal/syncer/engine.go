// Package syncer implements the idempotent parent+child upsert against the
// remote store.
package syncer

import (
	"context"

	"go.uber.org/zap"

	"github.com/tpbkitchens/maintsync/internal/portal"
	"github.com/tpbkitchens/maintsync/internal/remote"
)

// Engine upserts job records keyed purely on their job number. No
// optimistic-concurrency check guards against concurrent writers; the last
// writer wins.
type Engine struct {
	store  remote.Store
	logger *zap.Logger
}

// New builds an Engine over the given remote store.
func New(store remote.Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, logger: logger}
}

// Upsert synchronizes one record: update the existing parent and drop its
// items, or insert a new parent, then insert the record's current items as
// fresh children. Replacing children wholesale keeps the store an exact
// mirror of the latest extraction, so stale items never accumulate. The
// price is a window between the delete and the reinsert in which a failure
// leaves the parent with zero items; there is no compensating transaction,
// and re-running the batch is the recovery path.
func (e *Engine) Upsert(ctx context.Context, rec portal.JobRecord) error {
	id, found, err := e.store.FindJobID(ctx, rec.JobNumber)
	if err != nil {
		return &remote.SyncError{JobNumber: rec.JobNumber, Op: "lookup", Err: err}
	}

	if found {
		if err := e.store.UpdateJob(ctx, id, rec); err != nil {
			return &remote.SyncError{JobNumber: rec.JobNumber, Op: "update job", Err: err}
		}
		if err := e.store.DeleteItems(ctx, id); err != nil {
			return &remote.SyncError{JobNumber: rec.JobNumber, Op: "delete items", Err: err}
		}
		e.logger.Debug("updated existing job", zap.String("job_number", rec.JobNumber), zap.String("row_id", id))
	} else {
		id, err = e.store.InsertJob(ctx, rec)
		if err != nil {
			return &remote.SyncError{JobNumber: rec.JobNumber, Op: "insert job", Err: err}
		}
		e.logger.Debug("created new job", zap.String("job_number", rec.JobNumber), zap.String("row_id", id))
	}

	if err := e.store.InsertItems(ctx, id, rec.Items); err != nil {
		return &remote.SyncError{JobNumber: rec.JobNumber, Op: "insert items", Err: err}
	}
	return nil
}
