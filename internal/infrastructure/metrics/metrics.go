// Package metrics provides Prometheus collectors for dataset imports, sheet fetches and API calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics groups the collectors registered by the service.
type Metrics struct {
	registry *prometheus.Registry

	importsTotal   *prometheus.CounterVec
	importDuration *prometheus.HistogramVec
	rowsTotal      *prometheus.CounterVec
	datasetWords   prometheus.Gauge

	sheetFetchesTotal *prometheus.CounterVec

	rpcRequestsTotal *prometheus.CounterVec
	rpcDuration      *prometheus.HistogramVec
}

// New creates the collectors and registers them with registry.
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// NewRegistry returns a registry with the Go runtime and process collectors attached.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

func (m *Metrics) initMetrics() {
	m.importsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordgym_imports_total",
			Help: "Total number of dataset import operations",
		},
		[]string{"source", "status"}, // source: rows, text, sheet
	)

	m.importDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wordgym_import_duration_seconds",
			Help:    "Time taken to normalize, merge and persist an import",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"source"},
	)

	m.rowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordgym_import_rows_total",
			Help: "Imported rows by merge outcome",
		},
		[]string{"outcome"},
	)

	m.datasetWords = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wordgym_dataset_words",
		Help: "Number of words currently held in the dataset",
	})

	m.sheetFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordgym_sheet_fetches_total",
			Help: "Total number of published sheet fetches",
		},
		[]string{"status"}, // status: success, cached, error
	)

	m.rpcRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordgym_rpc_requests_total",
			Help: "Total number of API calls by procedure and result code",
		},
		[]string{"procedure", "code"},
	)

	m.rpcDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wordgym_rpc_duration_seconds",
			Help:    "API call latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"procedure"},
	)
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.importsTotal.Describe(ch)
	m.importDuration.Describe(ch)
	m.rowsTotal.Describe(ch)
	m.datasetWords.Describe(ch)
	m.sheetFetchesTotal.Describe(ch)
	m.rpcRequestsTotal.Describe(ch)
	m.rpcDuration.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.importsTotal.Collect(ch)
	m.importDuration.Collect(ch)
	m.rowsTotal.Collect(ch)
	m.datasetWords.Collect(ch)
	m.sheetFetchesTotal.Collect(ch)
	m.rpcRequestsTotal.Collect(ch)
	m.rpcDuration.Collect(ch)
}

// Registry exposes the registry the collectors live in, for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordImport records one import attempt. A nil receiver is a no-op so callers may run without metrics.
func (m *Metrics) RecordImport(source, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.importsTotal.WithLabelValues(source, status).Inc()
	m.importDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// RecordRows adds n rows under the merge outcome label.
func (m *Metrics) RecordRows(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsTotal.WithLabelValues(outcome).Add(float64(n))
}

// SetDatasetWords updates the dataset size gauge.
func (m *Metrics) SetDatasetWords(n int) {
	if m == nil {
		return
	}
	m.datasetWords.Set(float64(n))
}

func (m *Metrics) RecordSheetFetch(status string) {
	if m == nil {
		return
	}
	m.sheetFetchesTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordRPC(procedure, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rpcRequestsTotal.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}
