package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpbkitchens/maintsync/internal/fetch"
)

func TestCollyFetcherSendsSessionHeaders(t *testing.T) {
	var gotCookie, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html><body>listing</body></html>"))
	}))
	defer srv.Close()

	f := fetch.NewColly(fetch.Config{
		UserAgent: "maintsync/1.0",
		Cookie:    "ASP.NET_SessionId=abc123",
		Timeout:   5 * time.Second,
	})
	defer func() { _ = f.Close() }()

	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Contains(t, string(page.Body), "listing")
	assert.Equal(t, "ASP.NET_SessionId=abc123", gotCookie)
	assert.Equal(t, "maintsync/1.0", gotUA)
	assert.Positive(t, page.Duration)
}

func TestCollyFetcherSurfacesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "session expired", http.StatusForbidden)
	}))
	defer srv.Close()

	f := fetch.NewColly(fetch.Config{Timeout: 5 * time.Second})
	defer func() { _ = f.Close() }()

	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
}

func TestCollyFetcherHonorsContextCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_, _ = w.Write([]byte("late"))
	}))
	defer srv.Close()
	defer close(release)

	f := fetch.NewColly(fetch.Config{Timeout: 30 * time.Second})
	defer func() { _ = f.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := f.Fetch(ctx, srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
