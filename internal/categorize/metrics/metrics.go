package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the categorizer.
type Metrics struct {
	RuleAccepted       prometheus.Counter
	ClassifierAccepted prometheus.Counter
	ClassifierFailures prometheus.Counter
	ClassifyDuration   prometheus.Histogram
}

// New creates a Metrics instance with all categorizer metrics registered.
func New() *Metrics {
	return &Metrics{
		RuleAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "warmpath_categorize_rule_accepted_total",
			Help: "Categorizations accepted from the rule chain",
		}),
		ClassifierAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "warmpath_categorize_classifier_accepted_total",
			Help: "Categorizations accepted from the external classifier",
		}),
		ClassifierFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "warmpath_categorize_classifier_failures_total",
			Help: "External classifier calls that failed or returned an invalid response",
		}),
		ClassifyDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "warmpath_categorize_classifier_duration_seconds",
			Help:    "Duration of external classifier calls including retries",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// ObserveClassify records the duration of one classifier call.
func (m *Metrics) ObserveClassify(start time.Time) {
	m.ClassifyDuration.Observe(time.Since(start).Seconds())
}
