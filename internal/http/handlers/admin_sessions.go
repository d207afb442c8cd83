package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dmartinel/turnosms/internal/session"
	"github.com/dmartinel/turnosms/pkg/logging"
)

// AdminSessionsHandler exposes the active conversation sessions for
// operational diagnostics.
type AdminSessionsHandler struct {
	sessions session.Store
	logger   *logging.Logger
}

// NewAdminSessionsHandler creates the sessions diagnostics handler.
func NewAdminSessionsHandler(sessions session.Store, logger *logging.Logger) *AdminSessionsHandler {
	if sessions == nil {
		panic("handlers: session store is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminSessionsHandler{sessions: sessions, logger: logger}
}

// SessionSummary is the wire form of one active session.
type SessionSummary struct {
	Phone        string    `json:"phone"`
	State        string    `json:"state"`
	CustomerName string    `json:"customer_name,omitempty"`
	PendingSteps []string  `json:"pending_steps,omitempty"`
	LastActivity time.Time `json:"last_activity"`
}

// SessionsResponse wraps the session listing.
type SessionsResponse struct {
	Sessions []SessionSummary `json:"sessions"`
	Count    int              `json:"count"`
}

// List handles GET /admin/sessions.
func (h *AdminSessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.sessions.All(r.Context())
	if err != nil {
		h.logger.Error("listing sessions failed", "error", err)
		http.Error(w, "failed to list sessions", http.StatusInternalServerError)
		return
	}

	resp := SessionsResponse{Sessions: make([]SessionSummary, 0, len(all)), Count: len(all)}
	for _, s := range all {
		steps := make([]string, 0, len(s.Data.PendingSteps))
		for _, step := range s.Data.PendingSteps {
			steps = append(steps, string(step))
		}
		resp.Sessions = append(resp.Sessions, SessionSummary{
			Phone:        s.Phone,
			State:        string(s.State),
			CustomerName: s.Data.CustomerName,
			PendingSteps: steps,
			LastActivity: s.LastActivity,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("encoding sessions response failed", "error", err)
	}
}
