// Package remote defines the interface to the durable store that synced job
// records land in, decoupling the sync engine from any one backend. The
// store holds two collections: parents keyed by their natural job number and
// child items keyed by the parent's row id.
package remote

import (
	"context"
	"fmt"

	"github.com/tpbkitchens/maintsync/internal/portal"
)

// Store is the remote collection pair behind the sync engine. Implementations
// must return the generated row id from InsertJob; the item calls key off it.
type Store interface {
	// FindJobID looks up the parent row id for a job number. Absence is not
	// an error: ok is false when no row exists.
	FindJobID(ctx context.Context, jobNumber string) (id string, ok bool, err error)

	// InsertJob creates a new parent row and returns its generated id.
	InsertJob(ctx context.Context, rec portal.JobRecord) (string, error)

	// UpdateJob overwrites the scalar fields of an existing parent row.
	UpdateJob(ctx context.Context, id string, rec portal.JobRecord) error

	// DeleteItems removes every child item belonging to the parent row.
	DeleteItems(ctx context.Context, jobID string) error

	// InsertItems creates fresh child rows under the parent. An empty item
	// slice is a no-op, not an error.
	InsertItems(ctx context.Context, jobID string, items []portal.LineItem) error

	Close() error
}

// SyncError wraps a failed remote call with the job and operation it
// belonged to, so the traversal controller can report it and move on.
type SyncError struct {
	JobNumber string
	Op        string
	Err       error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s: %s: %v", e.JobNumber, e.Op, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// NoOpStore discards every write. Useful for dry runs and local development
// without a remote store.
type NoOpStore struct{}

// FindJobID for NoOpStore never finds anything.
func (NoOpStore) FindJobID(context.Context, string) (string, bool, error) { return "", false, nil }

// InsertJob for NoOpStore returns a dummy id.
func (NoOpStore) InsertJob(context.Context, portal.JobRecord) (string, error) {
	return "noop-job-id", nil
}

// UpdateJob for NoOpStore does nothing.
func (NoOpStore) UpdateJob(context.Context, string, portal.JobRecord) error { return nil }

// DeleteItems for NoOpStore does nothing.
func (NoOpStore) DeleteItems(context.Context, string) error { return nil }

// InsertItems for NoOpStore does nothing.
func (NoOpStore) InsertItems(context.Context, string, []portal.LineItem) error { return nil }

// Close for NoOpStore does nothing.
func (NoOpStore) Close() error { return nil }
