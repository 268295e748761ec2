package progress

import (
	"context"

	"go.uber.org/zap"
)

// LogSink writes structured logs for each progress event. It is the default
// operator surface: every batch milestone lands in the log stream.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs each event in the batch.
func (s *LogSink) Consume(_ context.Context, batch []Event) error {
	for _, evt := range batch {
		fields := []zap.Field{
			zap.String("batch_id", evt.BatchID.String()),
			zap.String("stage", string(evt.Stage)),
			zap.String("job_number", evt.JobNumber),
			zap.Int("position", evt.Position),
			zap.Int("queue_len", evt.QueueLen),
			zap.Int("processed", evt.Processed),
			zap.Int("items", evt.Items),
			zap.Int("delivered", evt.Delivered),
			zap.String("note", evt.Note),
		}
		s.logger.Log(levelFor(evt.Stage), "batch progress", fields...)
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error { return nil }
