package progress_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpbkitchens/maintsync/internal/progress"
)

type captureSink struct {
	mu     sync.Mutex
	events []progress.Event
	closed bool
}

func (s *captureSink) Consume(_ context.Context, batch []progress.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, batch...)
	return nil
}

func (s *captureSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *captureSink) snapshot() []progress.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]progress.Event(nil), s.events...)
}

func validEvent(stage progress.Stage) progress.Event {
	return progress.Event{
		BatchID:   uuid.New(),
		TS:        time.Now().UTC(),
		Stage:     stage,
		JobNumber: "KM4521",
	}
}

func TestHubDeliversToSinks(t *testing.T) {
	sink := &captureSink{}
	hub := progress.NewHub(progress.Config{}, sink)

	hub.Emit(validEvent(progress.StageBatchStart))
	hub.Emit(validEvent(progress.StageJobSynced))
	require.NoError(t, hub.Close(context.Background()))

	events := sink.snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, progress.StageBatchStart, events[0].Stage)
	assert.Equal(t, progress.StageJobSynced, events[1].Stage)
	assert.True(t, sink.closed)
}

func TestHubDiscardsInvalidEvents(t *testing.T) {
	sink := &captureSink{}
	hub := progress.NewHub(progress.Config{}, sink)

	hub.Emit(progress.Event{Stage: progress.StageJobSynced}) // no batch id, no ts
	require.NoError(t, hub.Close(context.Background()))

	assert.Empty(t, sink.snapshot())
}

func TestHubEmitAfterCloseIsNoOp(t *testing.T) {
	sink := &captureSink{}
	hub := progress.NewHub(progress.Config{}, sink)
	require.NoError(t, hub.Close(context.Background()))

	hub.Emit(validEvent(progress.StageJobSynced))
	assert.Empty(t, sink.snapshot())
}

func TestEventValidate(t *testing.T) {
	evt := validEvent(progress.StageJobSynced)
	require.NoError(t, evt.Validate())

	noJob := evt
	noJob.JobNumber = ""
	assert.Error(t, noJob.Validate(), "per-job stages need a job number")

	batchDone := evt
	batchDone.Stage = progress.StageBatchDone
	batchDone.JobNumber = ""
	assert.NoError(t, batchDone.Validate())

	unknown := evt
	unknown.Stage = progress.Stage("BOGUS")
	assert.Error(t, unknown.Validate())
}
