// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Curve metrics
	CurvesCreated   prometheus.Counter
	QuoteOperations *prometheus.CounterVec
	QuoteErrors     *prometheus.CounterVec

	// Simulation metrics
	SimulationRuns         prometheus.Counter
	SimulationRunsByStatus *prometheus.CounterVec
	FillsExecuted          prometheus.Counter
	ReportsGenerated       prometheus.Counter

	// Latency metrics
	HTTPRequestDuration *prometheus.HistogramVec
	SimulationDuration  *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "curve_lab"
	}

	return &Metrics{
		// Curve metrics
		CurvesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "curve",
			Name:      "curves_created_total",
			Help:      "Total number of curves registered",
		}),
		QuoteOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "curve",
			Name:      "quote_operations_total",
			Help:      "Total number of quote operations by type",
		}, []string{"operation"}),
		QuoteErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "curve",
			Name:      "quote_errors_total",
			Help:      "Total number of quote operation errors by type and kind",
		}, []string{"operation", "error_kind"}),

		// Simulation metrics
		SimulationRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "runs_total",
			Help:      "Total number of simulation runs started",
		}),
		SimulationRunsByStatus: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "runs_by_status_total",
			Help:      "Total number of simulation runs by schedule and status",
		}, []string{"schedule", "status"}),
		FillsExecuted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "fills_executed_total",
			Help:      "Total number of mint fills executed",
		}),
		ReportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "reports_generated_total",
			Help:      "Total number of run reports generated",
		}),

		// Latency metrics
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		SimulationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "duration_seconds",
			Help:      "Simulation run duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"schedule"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordCurveCreated increments the curves created counter.
func RecordCurveCreated() {
	DefaultMetrics.CurvesCreated.Inc()
}

// RecordQuoteOperation records a quote operation and, when err is non-nil,
// its error kind.
func RecordQuoteOperation(operation, errorKind string) {
	DefaultMetrics.QuoteOperations.WithLabelValues(operation).Inc()
	if errorKind != "" {
		DefaultMetrics.QuoteErrors.WithLabelValues(operation, errorKind).Inc()
	}
}

// RecordSimulationRun records a simulation run outcome.
func RecordSimulationRun(schedule, status string, durationSeconds float64, fills int) {
	DefaultMetrics.SimulationRuns.Inc()
	DefaultMetrics.SimulationRunsByStatus.WithLabelValues(schedule, status).Inc()
	DefaultMetrics.SimulationDuration.WithLabelValues(schedule).Observe(durationSeconds)
	DefaultMetrics.FillsExecuted.Add(float64(fills))
}

// RecordReportGenerated increments the reports generated counter.
func RecordReportGenerated() {
	DefaultMetrics.ReportsGenerated.Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordHTTPRequest records HTTP handler latency.
func RecordHTTPRequest(route, method string, seconds float64) {
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(route, method).Observe(seconds)
}
