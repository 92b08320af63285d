package matching

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts ranking outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Evaluated prometheus.Counter
	Excluded  *prometheus.CounterVec
	Dropped   prometheus.Counter
	Anomalies *prometheus.CounterVec
	Duration  prometheus.Histogram
}

// NewMetrics builds the collectors and registers them with reg when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Evaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "matcher",
			Name:      "candidates_evaluated_total",
			Help:      "Candidates evaluated by the ranker.",
		}),
		Excluded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matcher",
			Name:      "candidates_excluded_total",
			Help:      "Candidates excluded by a required dimension.",
		}, []string{"dimension"}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "matcher",
			Name:      "candidates_dropped_total",
			Help:      "Candidates dropped after a scoring failure.",
		}),
		Anomalies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matcher",
			Name:      "profile_anomalies_total",
			Help:      "Malformed or missing profile fields replaced with neutral values.",
		}, []string{"field"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "matcher",
			Name:      "rank_duration_seconds",
			Help:      "Time spent ranking one request.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Evaluated, m.Excluded, m.Dropped, m.Anomalies, m.Duration)
	}
	return m
}

func (m *Metrics) evaluated() {
	if m != nil {
		m.Evaluated.Inc()
	}
}

func (m *Metrics) excluded(dimension string) {
	if m != nil {
		m.Excluded.WithLabelValues(dimension).Inc()
	}
}

func (m *Metrics) dropped() {
	if m != nil {
		m.Dropped.Inc()
	}
}

func (m *Metrics) anomaly(field string) {
	if m != nil {
		m.Anomalies.WithLabelValues(field).Inc()
	}
}

func (m *Metrics) observe(d time.Duration) {
	if m != nil {
		m.Duration.Observe(d.Seconds())
	}
}
