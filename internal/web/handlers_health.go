package web

import (
	"net/http"

	"github.com/JonMunkholm/useradmin/internal/core"
)

type healthResponse struct {
	Status  string                   `json:"status"`
	Imports core.ImportLimiterStatus `json:"imports"`
}

// handleHealth reports liveness and current import slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Imports: s.service.ImportLimiter().Status(),
	})
}
