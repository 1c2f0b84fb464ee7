// Package telemetry exposes Prometheus metrics for the prediction service
// and keeps the running totals the health endpoint reports.
package telemetry

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	PredictionsTotal    prometheus.Counter
	PredictionLatency   prometheus.Histogram
	PersistenceFailures prometheus.Counter
	ModelsLoaded        prometheus.Gauge

	mu         sync.Mutex
	count      int64
	latencySum float64 // milliseconds
	start      time.Time
}

func New(service string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		PredictionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: service,
			Name:      "predictions_total",
			Help:      "Number of predictions served.",
		}),
		PredictionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: service,
			Name:      "prediction_latency_seconds",
			Help:      "Prediction latency, preprocessing through ensemble combination.",
			Buckets:   prometheus.DefBuckets,
		}),
		PersistenceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: service,
			Name:      "history_persistence_failures_total",
			Help:      "Durable history writes that failed and were served from cache only.",
		}),
		ModelsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: service,
			Name:      "models_loaded",
			Help:      "Number of ensemble models loaded at startup.",
		}),
		start: time.Now(),
	}
	reg.MustRegister(m.PredictionsTotal, m.PredictionLatency, m.PersistenceFailures, m.ModelsLoaded)
	return m
}

// ObservePrediction records one served prediction and its latency.
func (m *Metrics) ObservePrediction(latency time.Duration) {
	m.PredictionsTotal.Inc()
	m.PredictionLatency.Observe(latency.Seconds())

	m.mu.Lock()
	m.count++
	m.latencySum += float64(latency.Microseconds()) / 1000.0
	m.mu.Unlock()
}

// TotalPredictions returns the number of predictions served since startup.
func (m *Metrics) TotalPredictions() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// AvgLatencyMs returns the mean prediction latency in milliseconds, or 0
// before any prediction has been served.
func (m *Metrics) AvgLatencyMs() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.count == 0 {
		return 0
	}
	return m.latencySum / float64(m.count)
}

// UptimeSeconds returns seconds elapsed since the metrics were created.
func (m *Metrics) UptimeSeconds() float64 {
	return time.Since(m.start).Seconds()
}

// Handler returns an echo handler serving the Prometheus exposition format.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
