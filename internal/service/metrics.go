package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsCollector struct {
	mutations       *prometheus.CounterVec
	rtsTransitions  prometheus.Counter
	sweepDuration   prometheus.Histogram
	logins          prometheus.Counter
	sessionExpiries prometheus.Counter
	exports         *prometheus.CounterVec
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		mutations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "numtrack_mutations_total",
				Help: "Total number of record mutations",
			},
			[]string{"entity", "action"},
		),
		rtsTransitions: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "numtrack_rts_transitions_total",
				Help: "Total number of automatic Non-RTS to RTS transitions",
			},
		),
		sweepDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "numtrack_sweep_duration_seconds",
				Help:    "Duration of RTS sweep passes",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
		),
		logins: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "numtrack_logins_total",
				Help: "Total number of successful logins",
			},
		),
		sessionExpiries: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "numtrack_session_expiries_total",
				Help: "Total number of sessions expired by idle timeout",
			},
		),
		exports: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "numtrack_csv_exports_total",
				Help: "Total number of CSV exports",
			},
			[]string{"entity"},
		),
	}
}

func (m *MetricsCollector) IncrementMutation(entity, action string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(entity, action).Inc()
}

func (m *MetricsCollector) IncrementRTSTransition() {
	if m == nil {
		return
	}
	m.rtsTransitions.Inc()
}

func (m *MetricsCollector) RecordSweepDuration(seconds float64) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(seconds)
}

func (m *MetricsCollector) IncrementLogin() {
	if m == nil {
		return
	}
	m.logins.Inc()
}

func (m *MetricsCollector) IncrementSessionExpiry() {
	if m == nil {
		return
	}
	m.sessionExpiries.Inc()
}

func (m *MetricsCollector) IncrementExport(entity string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(entity).Inc()
}
