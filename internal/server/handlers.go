package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/polmat77/classreviewmaster/internal/acquire"
	"github.com/polmat77/classreviewmaster/internal/pipeline"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("encoding health response", "error", err)
	}
}

// analyzeHandler processes document analysis requests. The document is
// uploaded as multipart form data under the "document" field. With
// async=1 the analysis runs in the background and a job ID is returned.
func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Set content length limit
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(s.maxUploadMB * 1024 * 1024); err != nil {
		// Distinguish body-too-large from generic parse error
		if strings.Contains(strings.ToLower(err.Error()), "too large") {
			s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		} else {
			s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		}
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		s.writeErrorResponse(w, "No document file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	s.logger.Debug("analysis request",
		"client", getClientIP(r),
		"file", header.Filename,
		"size", header.Size,
	)

	if header.Size > s.maxUploadMB*1024*1024 {
		s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}
	uploadSizeBytes.Observe(float64(header.Size))

	// Persist the upload so extension-based dispatch works. The suffix
	// carries the original extension through os.CreateTemp.
	tempPath, err := saveUpload(file, header.Filename)
	if err != nil {
		s.writeErrorResponse(w, "Failed to store uploaded document", http.StatusInternalServerError)
		return
	}

	src, err := acquire.ForFile(tempPath)
	if err != nil {
		_ = os.Remove(tempPath)
		s.writeErrorResponse(w, fmt.Sprintf("Unsupported document: %v", err), http.StatusBadRequest)
		return
	}

	if isTruthy(r.FormValue("async")) {
		s.startJob(w, r, src, tempPath)
		return
	}
	defer func() { _ = os.Remove(tempPath) }()

	pl, err := s.requestPipeline(r, nil)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	res := pl.Analyze(r.Context(), src)
	recordAnalysis(res)

	response := AnalyzeResponse{Success: !res.Degraded, Result: res}
	if res.Failure != nil {
		response.Error = res.Failure.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("encoding analyze response", "error", err)
	}
}

// startJob launches a background analysis and answers with 202 Accepted.
func (s *Server) startJob(w http.ResponseWriter, r *http.Request, src acquire.Source, tempPath string) {
	job := s.jobs.Create()
	pl, err := s.requestPipeline(r, job.Tracker)
	if err != nil {
		_ = os.Remove(tempPath)
		s.jobs.Finish(job.ID, &pipeline.Result{
			Degraded: true,
			Failure:  &pipeline.ExtractError{Kind: pipeline.KindUnknown, Reason: err.Error()},
		})
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	go func() {
		defer func() { _ = os.Remove(tempPath) }()

		ctx := context.Background()
		if s.timeoutSec > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(s.timeoutSec)*time.Second)
			defer cancel()
		}

		res := pl.Analyze(ctx, src)
		recordAnalysis(res)
		s.jobs.Finish(job.ID, res)
	}()

	snapshot, _ := s.jobs.Snapshot(job.ID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		s.logger.Error("encoding job response", "error", err)
	}
}

// jobStatusHandler returns the state of an asynchronous job.
func (s *Server) jobStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/jobs/")
	if id == "" || strings.Contains(id, "/") {
		s.writeErrorResponse(w, "Invalid job ID", http.StatusBadRequest)
		return
	}

	snapshot, ok := s.jobs.Snapshot(id)
	if !ok {
		s.writeErrorResponse(w, "Job not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		s.logger.Error("encoding job response", "error", err)
	}
}

// requestPipeline derives a per-request pipeline from the shared one,
// applying form overrides. The tracker replaces the shared progress
// callback so concurrent requests do not interleave.
func (s *Server) requestPipeline(r *http.Request, tracker *pipeline.ProgressTracker) (*pipeline.Pipeline, error) {
	builder := pipeline.FromConfig(s.pipeline.Config())

	if raw := r.FormValue("shape"); raw != "" {
		shape, err := pipeline.ParseShape(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid shape %q", raw)
		}
		builder.WithShape(shape)
	}
	if tracker != nil {
		builder.WithProgress(tracker)
	} else {
		builder.WithProgress(pipeline.NoOpProgressCallback{})
	}

	return builder.Build()
}

// saveUpload writes the uploaded file to a temp file, preserving the
// original extension for source dispatch.
func saveUpload(file io.Reader, filename string) (string, error) {
	ext := filepath.Ext(filename)
	tmp, err := os.CreateTemp("", "classreview-upload-*"+ext)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, file); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func isTruthy(value string) bool {
	switch strings.ToLower(value) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := AnalyzeResponse{Success: false, Error: message}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("encoding error response", "error", err)
	}
}
