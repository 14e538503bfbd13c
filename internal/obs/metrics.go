package obs

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestDuration tracks how long each HTTP request takes,
	// broken down by method, route pattern, and status code.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "product_registry",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts all HTTP requests.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "product_registry",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// RequestsInFlight tracks how many requests are currently being served.
	RequestsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "product_registry",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being served.",
	})

	// OperationTotal counts registry operations by name and outcome.
	OperationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "product_registry",
			Subsystem: "registry",
			Name:      "operations_total",
			Help:      "Total registry operations by outcome.",
		},
		[]string{"op", "outcome"},
	)

	// StoreOpDuration tracks store driver call latency.
	StoreOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "product_registry",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Duration of store operations in seconds.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .5, 1},
		},
		[]string{"driver", "op"},
	)

	// ChangeEventsPublished counts change events accepted into the feed.
	ChangeEventsPublished = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "product_registry",
		Subsystem: "changelog",
		Name:      "events_published_total",
		Help:      "Total change events accepted into the feed.",
	})

	// ChangeEventsRecorded counts change events handled by feed workers.
	ChangeEventsRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "product_registry",
		Subsystem: "changelog",
		Name:      "events_recorded_total",
		Help:      "Total change events recorded by feed workers.",
	})

	// ChangeBacklog reports change events waiting to be handed to workers.
	ChangeBacklog = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "product_registry",
		Subsystem: "changelog",
		Name:      "backlog_size",
		Help:      "Change events buffered but not yet handed to workers.",
	})
)

// MetricsRegistry is the Prometheus registry used by the service.
var MetricsRegistry = prometheus.NewRegistry()

func init() {
	MetricsRegistry.MustRegister(collectors.NewGoCollector())
	MetricsRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	MetricsRegistry.MustRegister(
		RequestDuration,
		RequestTotal,
		RequestsInFlight,
		OperationTotal,
		StoreOpDuration,
		ChangeEventsPublished,
		ChangeEventsRecorded,
		ChangeBacklog,
	)
}

// MetricsHandler exposes the Prometheus metrics page for the service registry.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(MetricsRegistry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// ObserveStoreOp records a store call duration with a simple timer:
//
//	defer obs.ObserveStoreOp("memory", "get", time.Now())
func ObserveStoreOp(driver, op string, start time.Time) {
	StoreOpDuration.WithLabelValues(driver, op).Observe(time.Since(start).Seconds())
}
