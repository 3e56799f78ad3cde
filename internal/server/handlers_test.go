package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polmat77/classreviewmaster/internal/pipeline"
)

const bulletinUpload = "Bulletin du 1er Trimestre\n" +
	"Élève : Dupont Jean\n" +
	"MATHÉMATIQUES M. BERNARD 13,50 Bon trimestre.\n" +
	"FRANÇAIS Mme MARTIN 11,00 Travail sérieux.\n"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	pl, err := pipeline.NewBuilder().
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		Build()
	require.NoError(t, err)

	srv, err := NewServer(Config{
		CORSOrigin:  "*",
		MaxUploadMB: 10,
		TimeoutSec:  5,
		Pipeline:    pl,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return srv
}

func multipartUpload(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("document", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestServer_HealthHandler(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name           string
		method         string
		expectedStatus int
		checkResponse  bool
	}{
		{
			name:           "GET request success",
			method:         "GET",
			expectedStatus: http.StatusOK,
			checkResponse:  true,
		},
		{
			name:           "POST request not allowed",
			method:         "POST",
			expectedStatus: http.StatusMethodNotAllowed,
			checkResponse:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/health", nil)
			w := httptest.NewRecorder()

			server.healthHandler(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.checkResponse {
				var response HealthResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
				assert.Equal(t, "healthy", response.Status)
				assert.NotEmpty(t, response.Time)
				assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			}
		})
	}
}

func TestServer_AnalyzeHandler_Sync(t *testing.T) {
	server := newTestServer(t)

	body, contentType := multipartUpload(t, "bulletins.txt", bulletinUpload, nil)
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	server.analyzeHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var response AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
	require.NotNil(t, response.Result)
	assert.Len(t, response.Result.Students, 1)
	assert.Equal(t, "Dupont Jean", response.Result.Students[0].Name)
}

func TestServer_AnalyzeHandler_ShapeOverride(t *testing.T) {
	server := newTestServer(t)

	// A forced tabular reading of prose degrades instead of erroring.
	body, contentType := multipartUpload(t, "bulletins.txt", bulletinUpload,
		map[string]string{"shape": "tabular"})
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	server.analyzeHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var response AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(t, response.Success)
	require.NotNil(t, response.Result)
	assert.True(t, response.Result.Degraded)
	assert.NotEmpty(t, response.Error)
}

func TestServer_AnalyzeHandler_InvalidShape(t *testing.T) {
	server := newTestServer(t)

	body, contentType := multipartUpload(t, "bulletins.txt", bulletinUpload,
		map[string]string{"shape": "sideways"})
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	server.analyzeHandler(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_AnalyzeHandler_NoFile(t *testing.T) {
	server := newTestServer(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("shape", "auto"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()

	server.analyzeHandler(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var response AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(t, response.Success)
}

func TestServer_AnalyzeHandler_MethodNotAllowed(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/analyze", nil)
	w := httptest.NewRecorder()

	server.analyzeHandler(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServer_AnalyzeHandler_Async(t *testing.T) {
	server := newTestServer(t)

	body, contentType := multipartUpload(t, "bulletins.txt", bulletinUpload,
		map[string]string{"async": "1"})
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	server.analyzeHandler(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	var accepted JobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))
	require.NotEmpty(t, accepted.JobID)

	// Poll until the background analysis finishes.
	deadline := time.Now().Add(5 * time.Second)
	var snapshot JobResponse
	for {
		req := httptest.NewRequest(http.MethodGet, "/jobs/"+accepted.JobID, nil)
		w := httptest.NewRecorder()
		server.jobStatusHandler(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
		if snapshot.Status != JobStatusRunning {
			break
		}
		require.True(t, time.Now().Before(deadline), "job did not finish in time")
		time.Sleep(10 * time.Millisecond)
	}

	assert.Equal(t, JobStatusDone, snapshot.Status)
	require.NotNil(t, snapshot.Result)
	assert.Len(t, snapshot.Result.Students, 1)
}

func TestServer_JobStatusHandler_NotFound(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/jobs/does-not-exist", nil)
	w := httptest.NewRecorder()

	server.jobStatusHandler(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_JobStatusHandler_InvalidID(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/jobs/", nil)
	w := httptest.NewRecorder()

	server.jobStatusHandler(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
