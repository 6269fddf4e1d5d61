package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "feasibility_"

	ResultSuccess = "success"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

var (
	registerOnce sync.Once
	registry     = prometheus.NewRegistry()

	calculationsTotal  *prometheus.CounterVec
	calculationLatency *prometheus.HistogramVec
	undefinedIRRTotal  prometheus.Counter
	assistantRequests  *prometheus.CounterVec
	reportsTotal       *prometheus.CounterVec
)

// Init registers the collectors. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		calculationsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "calculations_total",
				Help: "Engine calculations by operation and result",
			},
			[]string{"operation", "result"},
		)
		calculationLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "calculation_latency_seconds",
				Help:    "Engine calculation latency in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"operation"},
		)
		undefinedIRRTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "undefined_irr_total",
				Help: "Returns runs whose ledger had no IRR",
			},
		)
		assistantRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "assistant_requests_total",
				Help: "Assistant questions by cache outcome",
			},
			[]string{"outcome"},
		)
		reportsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reports_total",
				Help: "Generated reports by format",
			},
			[]string{"format"},
		)
		registry.MustRegister(calculationsTotal, calculationLatency, undefinedIRRTotal, assistantRequests, reportsTotal)
	})
}

// ObserveCalculation records one engine call.
func ObserveCalculation(operation, result string, elapsed time.Duration) {
	Init()
	calculationsTotal.WithLabelValues(operation, result).Inc()
	calculationLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func IncUndefinedIRR() {
	Init()
	undefinedIRRTotal.Inc()
}

// IncAssistant counts a question as "hit", "miss" or "error".
func IncAssistant(outcome string) {
	Init()
	assistantRequests.WithLabelValues(outcome).Inc()
}

func IncReport(format string) {
	Init()
	reportsTotal.WithLabelValues(format).Inc()
}

// Handler serves the registry in Prometheus text format.
func Handler() http.Handler {
	Init()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// Registry exposes the registry for tests.
func Registry() *prometheus.Registry {
	Init()
	return registry
}
