// Package fetch retrieves portal pages over an authenticated session. The
// portal gates every page behind a session cookie, so each fetcher injects
// the configured cookie and user agent on every request.
package fetch

import (
	"context"
	"time"
)

// Page is the raw result of a single page retrieval.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// Fetcher retrieves a single page. Implementations must be safe for
// sequential reuse across a batch.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
	Close() error
}

// Config carries the session identity shared by all fetchers.
type Config struct {
	UserAgent  string
	Cookie     string
	Timeout    time.Duration
	NavTimeout time.Duration
}
