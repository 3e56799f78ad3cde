package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		// In production, you should check against allowed origins
		return true
	},
}

// WebSocketJobRequest subscribes to progress updates for a job.
type WebSocketJobRequest struct {
	JobID string `json:"job_id"`
}

// jobProgressSocketHandler streams job snapshots over a WebSocket until
// the job leaves the running state. The client sends a single
// subscription message naming the job.
func (s *Server) jobProgressSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrading connection to WebSocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	s.logger.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return
	}
	websocketMessagesTotal.WithLabelValues("received").Inc()

	var req WebSocketJobRequest
	if err := json.Unmarshal(data, &req); err != nil || req.JobID == "" {
		s.sendSocketSnapshot(conn, JobResponse{Status: JobStatusFailed, Error: "invalid subscription message"})
		return
	}

	s.streamJobProgress(conn, req.JobID)
}

// streamJobProgress sends periodic snapshots until the job finishes or
// the subscriber disappears.
func (s *Server) streamJobProgress(conn *websocket.Conn, jobID string) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		snapshot, ok := s.jobs.Snapshot(jobID)
		if !ok {
			s.sendSocketSnapshot(conn, JobResponse{JobID: jobID, Status: JobStatusFailed, Error: "job not found"})
			return
		}
		if !s.sendSocketSnapshot(conn, snapshot) {
			return
		}
		if snapshot.Status != JobStatusRunning {
			return
		}
		<-ticker.C
	}
}

func (s *Server) sendSocketSnapshot(conn *websocket.Conn, snapshot JobResponse) bool {
	data, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Error("marshaling job snapshot", "error", err)
		return false
	}
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return false
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
	return true
}
