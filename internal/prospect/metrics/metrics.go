package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the prospect matcher.
type Metrics struct {
	MatchRuns     prometheus.Counter
	WarmIntros    prometheus.Counter
	MatchesPerRun prometheus.Histogram
	MatchDuration prometheus.Histogram
}

// New creates a Metrics instance with all matcher metrics registered.
func New() *Metrics {
	return &Metrics{
		MatchRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "warmpath_prospect_match_runs_total",
			Help: "Prospect matching runs completed",
		}),
		WarmIntros: promauto.NewCounter(prometheus.CounterOpts{
			Name: "warmpath_prospect_warm_intros_total",
			Help: "Match runs that found a warm introduction path",
		}),
		MatchesPerRun: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "warmpath_prospect_matches_per_run",
			Help:    "Connection matches produced per matching run",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
		}),
		MatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "warmpath_prospect_match_duration_seconds",
			Help:    "Duration of one prospect matching run",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveRun records one completed matching run.
func (m *Metrics) ObserveRun(start time.Time, matches int, warm bool) {
	m.MatchRuns.Inc()
	m.MatchesPerRun.Observe(float64(matches))
	m.MatchDuration.Observe(time.Since(start).Seconds())
	if warm {
		m.WarmIntros.Inc()
	}
}
