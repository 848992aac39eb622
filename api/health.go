package api

import (
	"context"
	"net/http"
	"time"
)

// CheckFunc reports whether one dependency is usable.
type CheckFunc func(ctx context.Context) error

type dependencyStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMs int64  `json:"latencyMs"`
}

type readiness struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	out := readiness{Status: "ready", Dependencies: make(map[string]dependencyStatus, len(s.checks))}
	for name, check := range s.checks {
		start := time.Now()
		dep := dependencyStatus{Status: "healthy"}
		if err := check(ctx); err != nil {
			dep.Status = "unhealthy"
			dep.Message = err.Error()
			out.Status = "not_ready"
		}
		dep.LatencyMs = time.Since(start).Milliseconds()
		out.Dependencies[name] = dep
	}

	status := http.StatusOK
	if out.Status != "ready" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, out)
}
