package handler

import "net/http"

// Stops serves GET /api/v1/stops?pincode=P.
func (h *Handler) Stops(w http.ResponseWriter, r *http.Request) {
	pincode := r.URL.Query().Get("pincode")
	stops, err := h.svc.Stops(r.Context(), pincode)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, stops, "Stops retrieved for pincode: "+pincode)
}

// SearchStops serves GET /api/v1/stops/search?q=Q.
func (h *Handler) SearchStops(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	stops, err := h.svc.SearchStops(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, stops, "Stops found for query: "+q)
}
