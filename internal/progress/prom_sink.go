package progress

import (
	"context"

	"github.com/tpbkitchens/maintsync/internal/metrics"
)

// PromSink feeds progress events into the Prometheus collectors.
type PromSink struct{}

// NewPromSink initializes the collectors and returns the sink.
func NewPromSink() *PromSink {
	metrics.Init()
	return &PromSink{}
}

// Consume translates events into counter updates.
func (PromSink) Consume(_ context.Context, batch []Event) error {
	for _, evt := range batch {
		switch evt.Stage {
		case StageJobSynced:
			metrics.RecordJobSynced()
			metrics.AddItemsExtracted(evt.Items)
		case StageSyncFailed:
			metrics.RecordSyncFailure()
		case StageBatchDone:
			metrics.RecordBatch("completed")
		case StageBatchStart:
			// Counted on completion only.
		}
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (PromSink) Close(context.Context) error { return nil }
