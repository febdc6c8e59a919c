package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleAssemblyStats(w http.ResponseWriter, r *http.Request) {
	if s.latency == nil {
		jsonError(w, "assembly stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"latency":     s.latency.Snapshot(),
	})
}
