package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Alerts serves GET /api/v1/alerts with an optional pincode filter.
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	pincode := r.URL.Query().Get("pincode")
	alerts, err := h.svc.Alerts(r.Context(), pincode)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	msg := "All active alerts retrieved"
	if pincode != "" {
		msg = "Active alerts retrieved for pincode: " + pincode
	}
	h.ok(w, alerts, msg)
}

// AlertsForLine serves GET /api/v1/alerts/line/{lineNumber}.
func (h *Handler) AlertsForLine(w http.ResponseWriter, r *http.Request) {
	line := mux.Vars(r)["lineNumber"]
	alerts, err := h.svc.AlertsForLine(r.Context(), line)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, alerts, "Alerts retrieved for line: "+line)
}
