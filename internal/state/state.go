// Package state persists traversal progress so a batch can survive full
// process teardown. Each navigation ends one process instance and the next
// begins with nothing but this store; the durable key/value record is the
// only channel of continuity between them.
package state

import (
	"context"
	"fmt"

	"github.com/tpbkitchens/maintsync/internal/portal"
)

// TraversalState is the single durable progress marker for a batch run.
// Exactly one exists at a time; starting a new batch while Active is true
// must be rejected by the caller.
type TraversalState struct {
	Queue  []portal.WorkRef `json:"queue"`
	Cursor int              `json:"cursor"`
	Active bool             `json:"active"`
	// ProcessedCount increments only on a successful sync, so it can trail
	// Cursor when items were skipped.
	ProcessedCount int `json:"processed_count"`
}

// Current returns the work reference under the cursor.
func (s TraversalState) Current() (portal.WorkRef, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Queue) {
		return portal.WorkRef{}, false
	}
	return s.Queue[s.Cursor], true
}

// Remaining reports how many queue entries are still unvisited.
func (s TraversalState) Remaining() int {
	if s.Cursor >= len(s.Queue) {
		return 0
	}
	return len(s.Queue) - s.Cursor
}

// Validate enforces the state invariants before a write.
func (s TraversalState) Validate() error {
	if s.Cursor < 0 || s.Cursor > len(s.Queue) {
		return fmt.Errorf("cursor %d out of range for queue of %d", s.Cursor, len(s.Queue))
	}
	if s.ProcessedCount < 0 || s.ProcessedCount > s.Cursor {
		return fmt.Errorf("processed count %d exceeds cursor %d", s.ProcessedCount, s.Cursor)
	}
	return nil
}

// Store is the durable traversal-state interface. Load returns an empty,
// inactive state when nothing has been persisted; Save atomically overwrites
// the whole state. Both must be callable from a freshly started process.
type Store interface {
	Load(ctx context.Context) (TraversalState, error)
	Save(ctx context.Context, s TraversalState) error
	Reset(ctx context.Context) error
	Close() error
}
