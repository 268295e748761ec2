// Package traverse drives a batch run: build the work queue from the listing
// page, then visit each detail page in order, syncing what it finds. All
// progress lives in the durable state store, so the loop can resume in a
// fresh process after a crash or restart.
package traverse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/tpbkitchens/maintsync/internal/archive"
	"github.com/tpbkitchens/maintsync/internal/clock"
	"github.com/tpbkitchens/maintsync/internal/fetch"
	"github.com/tpbkitchens/maintsync/internal/metrics"
	"github.com/tpbkitchens/maintsync/internal/portal"
	"github.com/tpbkitchens/maintsync/internal/progress"
	"github.com/tpbkitchens/maintsync/internal/publisher"
	"github.com/tpbkitchens/maintsync/internal/remote"
	"github.com/tpbkitchens/maintsync/internal/state"
	"github.com/tpbkitchens/maintsync/internal/syncer"
)

// Control-flow errors surfaced to the command layer.
var (
	ErrAlreadyRunning = errors.New("a batch is already active; resume or reset it first")
	ErrEmptyQueue     = errors.New("listing page yielded no work")
	ErrNotActive      = errors.New("no active batch to resume")
)

// Config carries the per-run parameters.
type Config struct {
	// ListingURL is the portal page the work queue is built from.
	ListingURL string
	// Pace is the minimum interval between page visits. Zero disables pacing.
	Pace time.Duration
}

// Controller owns one traversal loop end to end.
type Controller struct {
	cfg       Config
	states    state.Store
	fetcher   fetch.Fetcher
	engine    *syncer.Engine
	snapshots archive.Store
	emitter   progress.Emitter
	pub       publisher.Publisher
	clk       clock.Clock
	limiter   *rate.Limiter
	logger    *zap.Logger
	batchID   uuid.UUID
}

// Result summarizes one completed batch.
type Result struct {
	// Queued is the work queue length the batch started with.
	Queued int
	// Visited counts queue entries the loop reached, successful or not.
	Visited int
	// Processed counts successful syncs only.
	Processed int
}

// New wires a Controller. Nil snapshots, emitter, publisher, or clock get
// no-op defaults.
func New(
	cfg Config,
	states state.Store,
	fetcher fetch.Fetcher,
	engine *syncer.Engine,
	snapshots archive.Store,
	emitter progress.Emitter,
	pub publisher.Publisher,
	clk clock.Clock,
	logger *zap.Logger,
) *Controller {
	if snapshots == nil {
		snapshots = archive.NoOpStore{}
	}
	if pub == nil {
		pub = publisher.NoOpPublisher{}
	}
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var limiter *rate.Limiter
	if cfg.Pace > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.Pace), 1)
	}
	return &Controller{
		cfg:       cfg,
		states:    states,
		fetcher:   fetcher,
		engine:    engine,
		snapshots: snapshots,
		emitter:   emitter,
		pub:       pub,
		clk:       clk,
		limiter:   limiter,
		logger:    logger,
		batchID:   uuid.New(),
	}
}

// Run starts a new batch and drives it to completion.
func (c *Controller) Run(ctx context.Context) (Result, error) {
	if err := c.StartBatch(ctx); err != nil {
		return Result{}, err
	}
	return c.drive(ctx)
}

// Resume picks up an interrupted batch from its persisted cursor.
func (c *Controller) Resume(ctx context.Context) (Result, error) {
	st, err := c.states.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load traversal state: %w", err)
	}
	if !st.Active {
		return Result{}, ErrNotActive
	}
	c.logger.Info("resuming batch",
		zap.Int("cursor", st.Cursor),
		zap.Int("queue_len", len(st.Queue)),
		zap.Int("processed", st.ProcessedCount))
	return c.drive(ctx)
}

// StartBatch builds a fresh work queue from the listing page and persists it
// as the active batch. It refuses to start while another batch is active, so
// an interrupted run is never silently discarded.
func (c *Controller) StartBatch(ctx context.Context) error {
	st, err := c.states.Load(ctx)
	if err != nil {
		return fmt.Errorf("load traversal state: %w", err)
	}
	if st.Active {
		return ErrAlreadyRunning
	}

	page, err := c.fetchPage(ctx, c.cfg.ListingURL, "listing")
	if err != nil {
		return fmt.Errorf("fetch listing: %w", err)
	}
	refs, err := portal.ParseListing(page.Body, page.URL)
	if err != nil {
		return fmt.Errorf("parse listing: %w", err)
	}
	if len(refs) == 0 {
		return ErrEmptyQueue
	}

	next := state.TraversalState{Queue: refs, Cursor: 0, Active: true, ProcessedCount: 0}
	if err := c.states.Save(ctx, next); err != nil {
		return fmt.Errorf("persist work queue: %w", err)
	}

	c.logger.Info("batch started",
		zap.String("batch_id", c.batchID.String()),
		zap.Int("queue_len", len(refs)))
	c.emit(progress.Event{
		Stage:    progress.StageBatchStart,
		QueueLen: len(refs),
	})
	return nil
}

// Step visits the job under the cursor and advances it. It returns done=true
// once the queue is exhausted and the state has been marked inactive. Sync
// failures are logged and skipped; only fetch/persistence failures abort.
func (c *Controller) Step(ctx context.Context) (bool, error) {
	st, err := c.states.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load traversal state: %w", err)
	}
	if !st.Active {
		return false, ErrNotActive
	}

	ref, ok := st.Current()
	if !ok {
		st.Active = false
		if err := c.states.Save(ctx, st); err != nil {
			return false, fmt.Errorf("persist completed state: %w", err)
		}
		return true, nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return false, fmt.Errorf("pacing wait: %w", err)
		}
	}

	if err := c.visit(ctx, ref, &st); err != nil {
		return false, err
	}

	st.Cursor++
	if st.Cursor >= len(st.Queue) {
		st.Active = false
	}
	if err := c.states.Save(ctx, st); err != nil {
		return false, fmt.Errorf("persist traversal state: %w", err)
	}
	return !st.Active, nil
}

// SyncOne extracts and syncs a single detail page without touching the batch
// state. Used for ad-hoc refreshes of one job.
func (c *Controller) SyncOne(ctx context.Context, url string) (portal.JobRecord, error) {
	page, err := c.fetchPage(ctx, url, "detail")
	if err != nil {
		return portal.JobRecord{}, fmt.Errorf("fetch detail: %w", err)
	}
	rec, err := portal.ParseRecord(page.Body, c.clk.Now())
	if err != nil {
		return portal.JobRecord{}, fmt.Errorf("parse detail: %w", err)
	}
	c.archiveSnapshot(ctx, rec.JobNumber, page.Body)
	if err := c.engine.Upsert(ctx, rec); err != nil {
		return portal.JobRecord{}, err
	}
	c.publishRecord(ctx, rec)
	return rec, nil
}

func (c *Controller) drive(ctx context.Context) (Result, error) {
	for {
		done, err := c.Step(ctx)
		if err != nil {
			return Result{}, err
		}
		if done {
			break
		}
	}

	st, err := c.states.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load final state: %w", err)
	}
	res := Result{
		Queued:    len(st.Queue),
		Visited:   st.Cursor,
		Processed: st.ProcessedCount,
	}

	c.emit(progress.Event{
		Stage:     progress.StageBatchDone,
		QueueLen:  res.Queued,
		Processed: res.Processed,
	})
	c.logger.Info("batch completed",
		zap.String("batch_id", c.batchID.String()),
		zap.Int("queued", res.Queued),
		zap.Int("visited", res.Visited),
		zap.Int("processed", res.Processed))

	if err := c.states.Reset(ctx); err != nil {
		return res, fmt.Errorf("reset traversal state: %w", err)
	}
	return res, nil
}

// visit fetches one detail page and syncs its record. A failed sync is
// recorded and skipped so the rest of the queue still runs.
func (c *Controller) visit(ctx context.Context, ref portal.WorkRef, st *state.TraversalState) error {
	page, err := c.fetchPage(ctx, ref.URL, "detail")
	if err != nil {
		return fmt.Errorf("fetch detail for %s: %w", ref.JobNumber, err)
	}
	c.archiveSnapshot(ctx, ref.JobNumber, page.Body)

	rec, err := portal.ParseRecord(page.Body, c.clk.Now())
	if err != nil {
		c.skip(ref, st, fmt.Errorf("parse detail: %w", err))
		return nil
	}

	if err := c.engine.Upsert(ctx, rec); err != nil {
		var syncErr *remote.SyncError
		if errors.As(err, &syncErr) {
			c.skip(ref, st, err)
			return nil
		}
		return fmt.Errorf("sync %s: %w", ref.JobNumber, err)
	}

	st.ProcessedCount++
	c.publishRecord(ctx, rec)
	c.emit(progress.Event{
		Stage:     progress.StageJobSynced,
		JobNumber: rec.JobNumber,
		Position:  st.Cursor + 1,
		QueueLen:  len(st.Queue),
		Processed: st.ProcessedCount,
		Items:     len(rec.Items),
		Delivered: rec.DeliveredCount(),
	})
	return nil
}

func (c *Controller) skip(ref portal.WorkRef, st *state.TraversalState, cause error) {
	c.logger.Warn("skipping job after sync failure",
		zap.String("job_number", ref.JobNumber),
		zap.Error(cause))
	c.emit(progress.Event{
		Stage:     progress.StageSyncFailed,
		JobNumber: ref.JobNumber,
		Position:  st.Cursor + 1,
		QueueLen:  len(st.Queue),
		Processed: st.ProcessedCount,
		Note:      cause.Error(),
	})
}

func (c *Controller) fetchPage(ctx context.Context, url, kind string) (fetch.Page, error) {
	page, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return fetch.Page{}, err
	}
	metrics.ObserveFetch(kind, page.Duration)
	return page, nil
}

// archiveSnapshot is best effort: a failed archive write never blocks a sync.
func (c *Controller) archiveSnapshot(ctx context.Context, jobNumber string, body []byte) {
	if _, err := c.snapshots.Save(ctx, jobNumber, body); err != nil {
		c.logger.Warn("snapshot archive failed",
			zap.String("job_number", jobNumber),
			zap.Error(err))
	}
}

// publishRecord is best effort: downstream announce failures never undo a
// successful sync.
func (c *Controller) publishRecord(ctx context.Context, rec portal.JobRecord) {
	if _, err := c.pub.PublishRecord(ctx, rec); err != nil {
		c.logger.Warn("record publish failed",
			zap.String("job_number", rec.JobNumber),
			zap.Error(err))
	}
}

func (c *Controller) emit(evt progress.Event) {
	if c.emitter == nil {
		return
	}
	evt.BatchID = c.batchID
	evt.TS = c.clk.Now()
	c.emitter.Emit(evt)
}
