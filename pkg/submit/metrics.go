package submit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts submissions and backend call attempts. A nil *Metrics is a
// valid no-op.
type Metrics struct {
	submissions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	attempts    *prometheus.CounterVec
	failures    *prometheus.CounterVec
}

// NewMetrics builds the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dosimetry_submissions_total",
			Help: "Submissions by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dosimetry_submission_duration_seconds",
			Help:    "Wall time of a submission including retries.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"strategy"}),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dosimetry_request_attempts_total",
			Help: "Backend call attempts by operation and result.",
		}, []string{"operation", "result"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dosimetry_submission_failures_total",
			Help: "Failed submissions by inferred stage.",
		}, []string{"stage"}),
	}
	for _, c := range []prometheus.Collector{m.submissions, m.duration, m.attempts, m.failures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) attempt(operation, result string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) outcome(strategy Strategy, elapsed time.Duration, failure *Failure) {
	if m == nil {
		return
	}
	outcome := "success"
	if failure != nil {
		outcome = "failure"
		m.failures.WithLabelValues(string(failure.Stage)).Inc()
	}
	m.submissions.WithLabelValues(strategy.String(), outcome).Inc()
	m.duration.WithLabelValues(strategy.String()).Observe(elapsed.Seconds())
}
