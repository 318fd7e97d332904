package learner

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics holds the pipeline collectors. A nil *PipelineMetrics
// records nothing.
type PipelineMetrics struct {
	stage       *prometheus.HistogramVec
	predictions *prometheus.CounterVec
	failures    *prometheus.CounterVec
	f1          *prometheus.GaugeVec
}

// NewPipelineMetrics creates the pipeline collectors and registers them on
// reg when reg is non-nil.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		stage: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ontolearner",
			Subsystem: "learner",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in fit, predict and evaluate.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}, []string{"task", "stage"}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ontolearner",
			Subsystem: "learner",
			Name:      "predictions_total",
			Help:      "Examples predicted.",
		}, []string{"task"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ontolearner",
			Subsystem: "learner",
			Name:      "prediction_failures_total",
			Help:      "Examples whose prediction failed and was left empty.",
		}, []string{"task"}),
		f1: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ontolearner",
			Subsystem: "learner",
			Name:      "f1_score",
			Help:      "Micro F1 of the last evaluation.",
		}, []string{"task"}),
	}
	if reg != nil {
		reg.MustRegister(m.stage, m.predictions, m.failures, m.f1)
	}
	return m
}

func (m *PipelineMetrics) observe(task Task, stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stage.WithLabelValues(string(task), stage).Observe(d.Seconds())
}

func (m *PipelineMetrics) predicted(task Task, failed bool) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(string(task)).Inc()
	if failed {
		m.failures.WithLabelValues(string(task)).Inc()
	}
}

func (m *PipelineMetrics) scored(task Task, f1 float64) {
	if m == nil {
		return
	}
	m.f1.WithLabelValues(string(task)).Set(f1)
}
