// Package metrics exposes Prometheus collectors for the sync pipeline.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	jobsSyncedTotal     prometheus.Counter
	syncFailuresTotal   prometheus.Counter
	itemsExtractedTotal prometheus.Counter
	batchesTotal        *prometheus.CounterVec
	fetchDuration       *prometheus.HistogramVec

	once sync.Once
)

// Init registers the collectors. Safe to call multiple times.
func Init() {
	once.Do(func() {
		jobsSyncedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "maintsync_jobs_synced_total",
			Help: "Total job records successfully upserted to the remote store.",
		})
		syncFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "maintsync_sync_failures_total",
			Help: "Total job visits that failed to sync and were skipped.",
		})
		itemsExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "maintsync_items_extracted_total",
			Help: "Total line items extracted from detail pages.",
		})
		batchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "maintsync_batches_total",
			Help: "Total batch runs, labeled by outcome.",
		}, []string{"outcome"})
		fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "maintsync_fetch_duration_seconds",
			Help:    "Portal page fetch latency, labeled by page kind.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"page"})
	})
}

// RecordJobSynced counts one successful upsert.
func RecordJobSynced() {
	if jobsSyncedTotal != nil {
		jobsSyncedTotal.Inc()
	}
}

// RecordSyncFailure counts one skipped job.
func RecordSyncFailure() {
	if syncFailuresTotal != nil {
		syncFailuresTotal.Inc()
	}
}

// AddItemsExtracted counts extracted line items.
func AddItemsExtracted(n int) {
	if itemsExtractedTotal != nil && n > 0 {
		itemsExtractedTotal.Add(float64(n))
	}
}

// RecordBatch counts a finished batch run by outcome.
func RecordBatch(outcome string) {
	if batchesTotal != nil {
		batchesTotal.WithLabelValues(outcome).Inc()
	}
}

// ObserveFetch records one page fetch latency.
func ObserveFetch(page string, d time.Duration) {
	if fetchDuration != nil {
		fetchDuration.WithLabelValues(page).Observe(d.Seconds())
	}
}

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
