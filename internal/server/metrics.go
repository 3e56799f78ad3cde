package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/polmat77/classreviewmaster/internal/pipeline"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classreview_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classreview_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Analysis metrics
	analysisRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classreview_analysis_requests_total",
			Help: "Total number of document analysis requests",
		},
		[]string{"shape", "status"}, // status: ok, degraded, error
	)

	analysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classreview_analysis_duration_seconds",
			Help:    "Document analysis duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"shape"},
	)

	studentsExtracted = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "classreview_students_extracted",
			Help:    "Number of student records extracted per document",
			Buckets: []float64{0, 1, 5, 10, 20, 30, 40, 60},
		},
	)

	// File upload metrics
	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "classreview_upload_size_bytes",
			Help: "Size of uploaded documents in bytes",
			Buckets: []float64{
				1024, 10 * 1024, 100 * 1024, 1024 * 1024,
				10 * 1024 * 1024, 50 * 1024 * 1024,
			},
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "classreview_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classreview_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)

func recordAnalysis(res *pipeline.Result) {
	status := "ok"
	if res.Degraded {
		status = "degraded"
	}
	shape := res.Shape.String()
	analysisRequestsTotal.WithLabelValues(shape, status).Inc()
	analysisDuration.WithLabelValues(shape).Observe(res.Duration.Seconds())
	studentsExtracted.Observe(float64(len(res.Students)))
}
