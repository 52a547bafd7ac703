package loader

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeLabel = "outcome"
	Committed    = "committed"
	Failed       = "failed"
)

// Metrics holds the Prometheus collectors updated by the executor.
// Batches are counted once, whatever the number of attempts.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	batches      *prometheus.CounterVec
	statements   prometheus.Counter
	inFlight     prometheus.Gauge
	batchLatency prometheus.Histogram
}

// NewMetrics creates unregistered collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		batches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bulkload_batches_total",
				Help: "Number of batches executed, by final outcome after any retries",
			},
			[]string{OutcomeLabel},
		),
		statements: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "bulkload_statements_total",
				Help: "Number of statements in committed batches",
			},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bulkload_transactions_in_flight",
				Help: "Number of write transactions currently open",
			},
		),
		batchLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bulkload_batch_duration_seconds",
				Help:    "Time to execute a batch, including retries",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
		),
	}
}

// Register registers every collector with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	var errs []error
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Collectors returns the collectors so callers can register them elsewhere.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.batches, m.statements, m.inFlight, m.batchLatency}
}

func (m *Metrics) transactionOpened() {
	if m == nil {
		return
	}
	m.inFlight.Inc()
}

func (m *Metrics) transactionClosed() {
	if m == nil {
		return
	}
	m.inFlight.Dec()
}

func (m *Metrics) observeBatch(statements int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.batchLatency.Observe(elapsed.Seconds())
	if err != nil {
		m.batches.WithLabelValues(Failed).Inc()
		return
	}
	m.batches.WithLabelValues(Committed).Inc()
	m.statements.Add(float64(statements))
}
