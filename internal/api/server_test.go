package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpbkitchens/maintsync/internal/api"
	"github.com/tpbkitchens/maintsync/internal/portal"
	"github.com/tpbkitchens/maintsync/internal/state"
)

type stubStates struct {
	st      state.TraversalState
	loadErr error
}

func (s *stubStates) Load(context.Context) (state.TraversalState, error) {
	return s.st, s.loadErr
}

func (s *stubStates) Save(context.Context, state.TraversalState) error { return nil }
func (s *stubStates) Reset(context.Context) error                      { return nil }
func (s *stubStates) Close() error                                     { return nil }

func doRequest(t *testing.T, srv *api.Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv := api.NewServer(&stubStates{}, nil)
	rec := doRequest(t, srv, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReflectsStateStore(t *testing.T) {
	srv := api.NewServer(&stubStates{}, nil)
	rec := doRequest(t, srv, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)

	srv = api.NewServer(&stubStates{loadErr: errors.New("locked")}, nil)
	rec = doRequest(t, srv, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetStateReportsRemaining(t *testing.T) {
	srv := api.NewServer(&stubStates{st: state.TraversalState{
		Queue: []portal.WorkRef{
			{JobNumber: "KM4521", URL: "https://portal.example.com/d?JobNumber=KM4521"},
			{JobNumber: "KM4522", URL: "https://portal.example.com/d?JobNumber=KM4522"},
			{JobNumber: "KM4523", URL: "https://portal.example.com/d?JobNumber=KM4523"},
		},
		Cursor:         1,
		Active:         true,
		ProcessedCount: 1,
	}}, nil)

	rec := doRequest(t, srv, http.MethodGet, "/v1/state")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Active         bool `json:"active"`
		Cursor         int  `json:"cursor"`
		ProcessedCount int  `json:"processed_count"`
		Remaining      int  `json:"remaining"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.True(t, payload.Active)
	assert.Equal(t, 1, payload.Cursor)
	assert.Equal(t, 1, payload.ProcessedCount)
	assert.Equal(t, 2, payload.Remaining)
}

func TestGetStateStoreFailure(t *testing.T) {
	srv := api.NewServer(&stubStates{loadErr: errors.New("locked")}, nil)
	rec := doRequest(t, srv, http.MethodGet, "/v1/state")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMetricsEndpointServes(t *testing.T) {
	srv := api.NewServer(&stubStates{}, nil)
	rec := doRequest(t, srv, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}
