package api

import (
	"net/http"
	"runtime"
	"time"
)

// HealthResponse is the body of the health endpoint
type HealthResponse struct {
	Status    string        `json:"status"`
	Timestamp string        `json:"timestamp"`
	Uptime    string        `json:"uptime"`
	Version   string        `json:"version"`
	Metrics   HealthMetrics `json:"metrics"`
}

// HealthMetrics contains operational metrics
type HealthMetrics struct {
	Networks        int `json:"networks"`
	ActiveSessions  int `json:"active_sessions"`
	StreamClients   int `json:"stream_clients"`
	RunningRequests int `json:"running_requests"`
	GoroutineCount  int `json:"goroutine_count"`
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Version:   s.deps.Version,
		Metrics: HealthMetrics{
			Networks:       s.deps.Networks.Count(),
			ActiveSessions: s.deps.Sessions.Len(),
			GoroutineCount: runtime.NumGoroutine(),
		},
	}
	if s.deps.Engine != nil {
		response.Metrics.RunningRequests = s.deps.Engine.Running()
	}
	if s.wsServer != nil {
		response.Metrics.StreamClients = s.wsServer.Hub().ClientCount()
	}

	writeJSON(w, http.StatusOK, response)
}

// handleVersion handles the version endpoint
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":    "explorer-search",
		"version": s.deps.Version,
	})
}
