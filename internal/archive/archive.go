// Package archive retains raw HTML snapshots of visited portal pages. The
// remote database only holds the extracted fields; snapshots let an operator
// re-run extraction after a selector change without revisiting the portal.
package archive

import "context"

// Store persists one page snapshot per call and returns a URI for it.
type Store interface {
	Save(ctx context.Context, jobNumber string, body []byte) (string, error)
	Close() error
}

// NoOpStore discards snapshots. Used when archiving is disabled.
type NoOpStore struct{}

// Save discards the snapshot and returns an empty URI.
func (NoOpStore) Save(context.Context, string, []byte) (string, error) { return "", nil }

// Close implements Store.
func (NoOpStore) Close() error { return nil }
