// Package publisher announces freshly synced job records to downstream
// consumers. The dashboard and reporting pipelines subscribe rather than
// polling the database.
package publisher

import (
	"context"
	"sync"

	"github.com/tpbkitchens/maintsync/internal/portal"
)

// Publisher pushes one message per successfully synced record.
type Publisher interface {
	PublishRecord(ctx context.Context, rec portal.JobRecord) (string, error)
	Close() error
}

// NoOpPublisher discards records. Used when no downstream consumers exist.
type NoOpPublisher struct{}

// PublishRecord discards the record.
func (NoOpPublisher) PublishRecord(context.Context, portal.JobRecord) (string, error) {
	return "", nil
}

// Close implements Publisher.
func (NoOpPublisher) Close() error { return nil }

// MemoryPublisher stores published records for inspection in tests.
type MemoryPublisher struct {
	mu      sync.RWMutex
	records []portal.JobRecord
}

// NewMemory returns a MemoryPublisher.
func NewMemory() *MemoryPublisher {
	return &MemoryPublisher{}
}

// PublishRecord records the payload and returns a pseudo ID.
func (p *MemoryPublisher) PublishRecord(_ context.Context, rec portal.JobRecord) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, rec)
	return rec.JobNumber, nil
}

// Records returns the recorded publishes.
func (p *MemoryPublisher) Records() []portal.JobRecord {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]portal.JobRecord, len(p.records))
	copy(out, p.records)
	return out
}

// Close implements Publisher.
func (p *MemoryPublisher) Close() error { return nil }
