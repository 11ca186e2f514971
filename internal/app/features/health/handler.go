package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/edusphere/console/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	APIBase string
	Client  *http.Client
	Log     *zap.Logger
}

// NewHandler constructs a health Handler.
func NewHandler(apiBase string, logger *zap.Logger) *Handler {
	return &Handler{
		APIBase: apiBase,
		Client:  &http.Client{},
		Log:     logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
}

// Serve handles GET /health. The console itself is always "ok"; the backend
// field is informational. Any HTTP response from the API base, including an
// error status, counts as reachable.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{Status: "ok", Backend: "unreachable"}

	if h.APIBase != "" {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.APIBase+"/", nil)
		if err == nil {
			if res, err := h.Client.Do(req); err == nil {
				res.Body.Close()
				resp.Backend = "reachable"
			} else {
				h.Log.Warn("health-check: backend unreachable", zap.Error(err))
			}
		}
	}

	_ = json.NewEncoder(w).Encode(resp)
}
