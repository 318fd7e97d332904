package extract

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the extraction collectors. A nil *Metrics records nothing.
type Metrics struct {
	duration *prometheus.HistogramVec
	rowCount *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewMetrics creates the extraction collectors and registers them on reg
// when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ontolearner",
			Subsystem: "extract",
			Name:      "duration_seconds",
			Help:      "Time spent in each extractor.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"extractor"}),
		rowCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ontolearner",
			Subsystem: "extract",
			Name:      "rows_total",
			Help:      "Rows emitted by each extractor.",
		}, []string{"extractor"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ontolearner",
			Subsystem: "extract",
			Name:      "failures_total",
			Help:      "Extractor runs that returned an error.",
		}, []string{"extractor"}),
	}
	if reg != nil {
		reg.MustRegister(m.duration, m.rowCount, m.failures)
	}
	return m
}

func (m *Metrics) observe(extractor string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(extractor).Observe(d.Seconds())
	if err != nil {
		m.failures.WithLabelValues(extractor).Inc()
	}
}

func (m *Metrics) rows(extractor string, n int) {
	if m == nil {
		return
	}
	m.rowCount.WithLabelValues(extractor).Add(float64(n))
}
