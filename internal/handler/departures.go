package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
)

// Departures serves GET /api/v1/departures?pincode=P.
func (h *Handler) Departures(w http.ResponseWriter, r *http.Request) {
	pincode := r.URL.Query().Get("pincode")
	deps, err := h.svc.Departures(r.Context(), pincode)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, deps, "Departures retrieved for pincode: "+pincode)
}

// DeparturesForStop serves GET /api/v1/departures/stop/{stopId}.
func (h *Handler) DeparturesForStop(w http.ResponseWriter, r *http.Request) {
	stopID := mux.Vars(r)["stopId"]
	deps, err := h.svc.DeparturesForStop(r.Context(), stopID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, deps, "Departures retrieved for stop: "+stopID)
}

// liveRequest accepts {"stopIds": [...]}.
type liveRequest struct {
	StopIDs []string `json:"stopIds"`
}

// LiveDepartures serves POST /api/v1/departures/live. The body is either
// {"stopIds": [...]} or a bare JSON array of stop ids.
func (h *Handler) LiveDepartures(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		h.badRequest(w, "could not read request body")
		return
	}

	var ids []string
	if err := json.Unmarshal(body, &ids); err != nil {
		var req liveRequest
		if err := json.Unmarshal(body, &req); err != nil {
			h.badRequest(w, "body must be a JSON array of stop ids or {\"stopIds\": [...]}")
			return
		}
		ids = req.StopIDs
	}

	deps, err := h.svc.DeparturesForStops(r.Context(), ids)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, deps, "Live departures retrieved")
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	h.writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: msg, Timestamp: timestamp()})
}
