// Package progress carries operator-facing batch milestones to pluggable
// sinks. The traversal controller emits events; where they end up (logs,
// metrics) is the sink's business.
package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the milestone an Event represents.
type Stage string

// Supported progress stages.
const (
	StageBatchStart Stage = "BATCH_START"
	StageJobSynced  Stage = "JOB_SYNCED"
	StageSyncFailed Stage = "SYNC_FAILED"
	StageBatchDone  Stage = "BATCH_DONE"
)

// Event captures a single milestone of a batch run.
type Event struct {
	// BatchID identifies one run of the traversal loop.
	BatchID uuid.UUID
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which milestone occurred.
	Stage Stage
	// JobNumber scopes per-job stages to the job being visited.
	JobNumber string
	// Position is the 1-based queue position of the job; QueueLen the total.
	Position int
	QueueLen int
	// Processed is the running count of successful syncs.
	Processed int
	// Items and Delivered summarize the extracted record for synced jobs.
	Items     int
	Delivered int
	// Note carries low-volume context such as failure text.
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.BatchID == uuid.Nil {
		return errors.New("batch id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageBatchStart, StageBatchDone:
	case StageJobSynced, StageSyncFailed:
		if e.JobNumber == "" {
			return fmt.Errorf("%s requires a job number", e.Stage)
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	return nil
}

// Emitter publishes individual events. Hub satisfies this interface so the
// controller stays agnostic about buffering and fan-out.
type Emitter interface {
	Emit(evt Event)
}

// Sink consumes batches of progress events. Implementations must honor ctx
// deadlines and tolerate repeated calls.
type Sink interface {
	Consume(ctx context.Context, batch []Event) error
	Close(ctx context.Context) error
}
