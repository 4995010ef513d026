package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	uploadsTotal   *prometheus.CounterVec
	uploadBytes    prometheus.Histogram
	uploadPages    prometheus.Histogram
	uploadDuration *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "examlab",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "examlab",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "examlab",
			Subsystem:   "http",
			Name:        "in_flight_requests",
			Help:        "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "examlab",
			Subsystem: "upload",
			Name:      "ingest_total",
			Help:      "Upload attempts by result (accepted, duplicate, invalid, too_large, error).",
		},
		[]string{"service", "result"},
	)
	uploadBytes := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   "examlab",
			Subsystem:   "upload",
			Name:        "accepted_bytes",
			Help:        "Size distribution of accepted exam files.",
			Buckets:     prometheus.ExponentialBuckets(16<<10, 4, 8),
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	uploadPages := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   "examlab",
			Subsystem:   "upload",
			Name:        "accepted_pages",
			Help:        "Page count distribution of accepted exam files.",
			Buckets:     []float64{1, 2, 4, 8, 16, 32, 64, 128},
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	uploadDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "examlab",
			Subsystem: "upload",
			Name:      "ingest_duration_seconds",
			Help:      "Upload ingest duration in seconds by result.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "result"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		uploadsTotal,
		uploadBytes,
		uploadPages,
		uploadDuration,
	)

	return &HTTPServerMetrics{
		registry:        registry,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		uploadsTotal:    uploadsTotal,
		uploadBytes:     uploadBytes,
		uploadPages:     uploadPages,
		uploadDuration:  uploadDuration,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(service, r.Method, path, strconv.Itoa(recorder.statusCode)).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// RecordUpload counts one ingest attempt. sizeBytes and pages are only
// observed for accepted uploads.
func (m *HTTPServerMetrics) RecordUpload(service, result string, sizeBytes int64, pages int, duration time.Duration) {
	if result == "" {
		result = "unknown"
	}
	m.uploadsTotal.WithLabelValues(service, result).Inc()
	m.uploadDuration.WithLabelValues(service, result).Observe(duration.Seconds())
	if result != "accepted" {
		return
	}
	m.uploadBytes.Observe(float64(sizeBytes))
	if pages > 0 {
		m.uploadPages.Observe(float64(pages))
	}
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/laboratory/uploads/"):
		return "/api/laboratory/uploads/{upload_id}"
	default:
		return path
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
