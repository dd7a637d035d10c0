package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the contact registry module.
// Tracks ingestion outcomes and merge latency.
type Metrics struct {
	ContactsCreated prometheus.Counter
	ContactsMerged  prometheus.Counter
	IngestFailures  prometheus.Counter
	IngestDuration  prometheus.Histogram
}

// New creates a Metrics instance with all contact module metrics registered.
func New() *Metrics {
	return &Metrics{
		ContactsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "warmpath_contacts_created_total",
			Help: "Total number of contacts created from raw records",
		}),
		ContactsMerged: promauto.NewCounter(prometheus.CounterOpts{
			Name: "warmpath_contacts_merged_total",
			Help: "Total number of raw records merged into existing contacts",
		}),
		IngestFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "warmpath_ingest_failures_total",
			Help: "Total number of raw records that could not be ingested",
		}),
		IngestDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "warmpath_ingest_duration_seconds",
			Help:    "Duration of single-record ingest operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveIngest records the duration of one ingest operation.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveIngest(start time.Time) {
	m.IngestDuration.Observe(time.Since(start).Seconds())
}
