package handler

import "net/http"

// Health serves GET /api/v1/health. It is not wrapped in the response envelope.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "UP",
		"timestamp": timestamp(),
		"service":   "LiveLink API",
	})
}
