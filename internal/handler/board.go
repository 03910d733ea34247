package handler

import (
	"errors"
	"net/http"

	"livelink/internal/service"
	"livelink/internal/templates"
)

// Board serves the HTML departure board for a pincode. Without a pincode it
// renders the lookup form alone.
func (h *Handler) Board(w http.ResponseWriter, r *http.Request) {
	pincode := r.URL.Query().Get("pincode")
	data := templates.BoardData{Page: templates.Page{Title: "Departures", Version: h.version}}

	b, err := h.svc.Board(r.Context(), pincode)
	var verr *service.ValidationError
	status := http.StatusOK
	switch {
	case errors.As(err, &verr):
		if pincode != "" {
			status = http.StatusBadRequest
		}
	case err != nil:
		h.logger.Error("building board", "pincode", pincode, "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	default:
		data.Board = b
		data.Page.Title = "Departures for " + b.Pincode
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.Board(data).Render(r.Context(), w); err != nil {
		h.logger.Error("rendering board", "error", err)
	}
}
