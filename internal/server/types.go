// Package server exposes document analysis over HTTP: synchronous
// uploads, asynchronous jobs with WebSocket progress, health and
// Prometheus metrics.
package server

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/polmat77/classreviewmaster/internal/pipeline"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	pipeline    *pipeline.Pipeline
	jobs        *jobStore
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
	logger      *slog.Logger
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	CORSOrigin  string
	MaxUploadMB int64
	TimeoutSec  int

	// Pipeline is the shared analysis pipeline. Required.
	Pipeline *pipeline.Pipeline

	Logger *slog.Logger
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// AnalyzeResponse wraps a synchronous analysis result.
type AnalyzeResponse struct {
	Success bool             `json:"success"`
	Result  *pipeline.Result `json:"result,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// JobResponse describes an asynchronous analysis job.
type JobResponse struct {
	JobID   string           `json:"job_id"`
	Status  string           `json:"status"`
	Percent float64          `json:"percent"`
	Result  *pipeline.Result `json:"result,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// NewServer creates a server around an existing pipeline.
func NewServer(config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pl := config.Pipeline
	if pl == nil {
		var err error
		pl, err = pipeline.NewBuilder().Build()
		if err != nil {
			return nil, err
		}
	}
	return &Server{
		pipeline:    pl,
		jobs:        newJobStore(),
		corsOrigin:  config.CORSOrigin,
		maxUploadMB: config.MaxUploadMB,
		timeoutSec:  config.TimeoutSec,
		logger:      logger,
	}, nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/analyze", s.corsMiddleware(s.analyzeHandler))
	mux.HandleFunc("/jobs/", s.corsMiddleware(s.jobStatusHandler))
	mux.HandleFunc("/ws/jobs", s.jobProgressSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}
