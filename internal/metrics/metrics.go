// Package metrics exposes the Prometheus collectors shared by the API and the worker.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ducksnap",
		Subsystem: "http",
		Name:      "inflight_requests",
		Help:      "Current number of in-flight HTTP requests.",
	})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ducksnap",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests handled.",
	}, []string{"method", "path", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ducksnap",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"method", "path"})

	tasksProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ducksnap",
		Subsystem: "worker",
		Name:      "tasks_total",
		Help:      "Background tasks by type and outcome.",
	}, []string{"type", "result"})

	taskDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ducksnap",
		Subsystem: "worker",
		Name:      "task_duration_seconds",
		Help:      "Duration of background tasks including retries.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"type"})

	webhookEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ducksnap",
		Subsystem: "paypal",
		Name:      "webhook_events_total",
		Help:      "PayPal webhook notifications by event type and outcome.",
	}, []string{"event", "result"})
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		tasksProcessed,
		taskDuration,
		webhookEvents,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// OtherRoute labels requests that match no registered route.
const OtherRoute = "other"

// RouteFunc maps a request to its route label. It must return values from a
// fixed set, such as mux patterns, so label cardinality stays bounded.
type RouteFunc func(r *http.Request) string

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
// A nil route labels every request as OtherRoute.
func InstrumentHandler(next http.Handler, route RouteFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		path := OtherRoute
		if route != nil {
			if p := route(r); p != "" {
				path = p
			}
		}
		method := methodLabel(r.Method)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

func methodLabel(m string) string {
	switch m = strings.ToUpper(m); m {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions:
		return m
	}
	return "OTHER"
}

// RecordTask records the outcome of one background task.
func RecordTask(taskType, result string, duration time.Duration) {
	tasksProcessed.WithLabelValues(taskType, result).Inc()
	taskDuration.WithLabelValues(taskType).Observe(duration.Seconds())
}

// RecordWebhook records one PayPal notification.
func RecordWebhook(event, result string) {
	webhookEvents.WithLabelValues(event, result).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
