// Package metrics counts registration outcomes for a batch run and pushes
// them to a Prometheus Pushgateway, since a batch job is never scraped.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"qrpass/internal/domain"
	"qrpass/internal/ports/output"
)

const (
	namespace = "qrpass"
	jobName   = "qrpass_register"
)

var _ output.RunRecorder = (*Metrics)(nil)

// Metrics holds the batch metrics on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	RowsTotal       *prometheus.CounterVec
	PersistFailures prometheus.Counter
	NotifyFailures  prometheus.Counter
	RowDuration     prometheus.Histogram
	LastCompletion  prometheus.Gauge
}

// New creates and registers all metrics on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry: registry,
		RowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_total",
				Help:      "Roster rows processed, by terminal status",
			},
			[]string{"status"},
		),
		PersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Participant inserts that failed",
		}),
		NotifyFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notify_failures_total",
			Help:      "QR e-mails that could not be sent",
		}),
		RowDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "row_duration_seconds",
			Help:      "Time spent registering one roster row",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		LastCompletion: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_completion_timestamp_seconds",
			Help:      "Unix time the last batch run completed",
		}),
	}
	for _, s := range domain.AllStatuses {
		m.RowsTotal.WithLabelValues(string(s))
	}
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe records one row outcome.
func (m *Metrics) Observe(result domain.RowResult) {
	m.RowsTotal.WithLabelValues(string(result.Status)).Inc()
	if result.PersistErr != nil {
		m.PersistFailures.Inc()
	}
	if result.NotifyErr != nil {
		m.NotifyFailures.Inc()
	}
	if result.Duration > 0 {
		m.RowDuration.Observe(result.Duration.Seconds())
	}
}

// Push marks the run complete and sends every metric to the Pushgateway at url.
func (m *Metrics) Push(ctx context.Context, url string) error {
	m.LastCompletion.SetToCurrentTime()
	if err := push.New(url, jobName).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
