package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tpbkitchens/maintsync/internal/portal"
)

// SupabaseConfig controls the PostgREST-backed store.
type SupabaseConfig struct {
	BaseURL    string
	APIKey     string
	JobsTable  string
	ItemsTable string
	Timeout    time.Duration
}

const (
	defaultJobsTable  = "maintenance_jobs"
	defaultItemsTable = "maintenance_items"
	maxErrorBodyBytes = 4 << 10
)

// SupabaseStore implements Store against a PostgREST endpoint: select by
// key filter, insert with the generated row returned, patch by id, delete by
// foreign-key filter.
type SupabaseStore struct {
	cfg    SupabaseConfig
	client *http.Client
	logger *zap.Logger
}

// NewSupabaseStore builds a store for the given endpoint.
func NewSupabaseStore(cfg SupabaseConfig, logger *zap.Logger) *SupabaseStore {
	if cfg.JobsTable == "" {
		cfg.JobsTable = defaultJobsTable
	}
	if cfg.ItemsTable == "" {
		cfg.ItemsTable = defaultItemsTable
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupabaseStore{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// jsonID tolerates both uuid-string and bigint row ids; which one comes back
// depends on how the schema generated its primary keys.
type jsonID string

func (v *jsonID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = jsonID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("row id is neither string nor number: %w", err)
	}
	*v = jsonID(n.String())
	return nil
}

type idRow struct {
	ID jsonID `json:"id"`
}

type jobPatch struct {
	ClientName  string `json:"client_name"`
	Mobile      string `json:"mobile"`
	Email       string `json:"email"`
	SiteAddress string `json:"site_address"`
	Suburb      string `json:"suburb"`
	ProcessedAt string `json:"processed_at"`
}

type jobInsert struct {
	JobNumber   string `json:"job_number"`
	ClientName  string `json:"client_name"`
	Mobile      string `json:"mobile"`
	Email       string `json:"email"`
	SiteAddress string `json:"site_address"`
	Suburb      string `json:"suburb"`
	ProcessedAt string `json:"processed_at"`
}

type itemRow struct {
	JobID        string  `json:"maintenance_job_id"`
	ItemName     string  `json:"item_name"`
	Reason       string  `json:"reason"`
	DateCreated  string  `json:"date_created"`
	DeliveryInfo string  `json:"delivery_info"`
	DeliveryDate *string `json:"delivery_date"`
	IsDelivered  bool    `json:"is_delivered"`
}

func newJobPatch(rec portal.JobRecord) jobPatch {
	return jobPatch{
		ClientName:  rec.ClientName,
		Mobile:      rec.Mobile,
		Email:       rec.Email,
		SiteAddress: rec.SiteAddress,
		Suburb:      rec.Suburb,
		ProcessedAt: rec.ExtractedAt.UTC().Format(time.RFC3339),
	}
}

// FindJobID selects the parent row id by its natural key.
func (s *SupabaseStore) FindJobID(ctx context.Context, jobNumber string) (string, bool, error) {
	path := fmt.Sprintf("%s?job_number=eq.%s&select=id", s.cfg.JobsTable, url.QueryEscape(jobNumber))
	var rows []idRow
	if err := s.do(ctx, http.MethodGet, path, nil, &rows); err != nil {
		return "", false, err
	}
	if len(rows) == 0 {
		return "", false, nil
	}
	return string(rows[0].ID), true, nil
}

// InsertJob creates a new parent row and returns the generated id.
func (s *SupabaseStore) InsertJob(ctx context.Context, rec portal.JobRecord) (string, error) {
	patch := newJobPatch(rec)
	body := jobInsert{
		JobNumber:   rec.JobNumber,
		ClientName:  patch.ClientName,
		Mobile:      patch.Mobile,
		Email:       patch.Email,
		SiteAddress: patch.SiteAddress,
		Suburb:      patch.Suburb,
		ProcessedAt: patch.ProcessedAt,
	}
	var rows []idRow
	if err := s.do(ctx, http.MethodPost, s.cfg.JobsTable, body, &rows); err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("insert into %s returned no representation", s.cfg.JobsTable)
	}
	return string(rows[0].ID), nil
}

// UpdateJob patches the scalar fields of an existing parent row.
func (s *SupabaseStore) UpdateJob(ctx context.Context, id string, rec portal.JobRecord) error {
	path := fmt.Sprintf("%s?id=eq.%s", s.cfg.JobsTable, url.QueryEscape(id))
	return s.do(ctx, http.MethodPatch, path, newJobPatch(rec), nil)
}

// DeleteItems removes all child items for the parent row.
func (s *SupabaseStore) DeleteItems(ctx context.Context, jobID string) error {
	path := fmt.Sprintf("%s?maintenance_job_id=eq.%s", s.cfg.ItemsTable, url.QueryEscape(jobID))
	return s.do(ctx, http.MethodDelete, path, nil, nil)
}

// InsertItems bulk-inserts the current items as fresh children.
func (s *SupabaseStore) InsertItems(ctx context.Context, jobID string, items []portal.LineItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]itemRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, itemRow{
			JobID:        jobID,
			ItemName:     it.ItemName,
			Reason:       it.Reason,
			DateCreated:  it.DateCreated,
			DeliveryInfo: it.DeliveryInfo,
			DeliveryDate: it.DeliveryDate,
			IsDelivered:  it.Delivered,
		})
	}
	return s.do(ctx, http.MethodPost, s.cfg.ItemsTable, rows, nil)
}

// Close implements Store; the HTTP client holds no resources to release.
func (s *SupabaseStore) Close() error { return nil }

func (s *SupabaseStore) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s %s payload: %w", method, path, err)
		}
		body = bytes.NewReader(encoded)
	}

	endpoint := strings.TrimRight(s.cfg.BaseURL, "/") + "/rest/v1/" + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("apikey", s.cfg.APIKey)
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}
