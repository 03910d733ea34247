package handler

import (
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"sort"
	"time"

	"github.com/gorilla/mux"

	"livelink/internal/service"
)

// Handler holds shared dependencies for all HTTP handlers.
type Handler struct {
	svc            *service.Service
	logger         *slog.Logger
	version        string // content hash of static assets, for cache busting
	streamInterval time.Duration
}

// New creates a Handler. static is the embedded asset tree used for the board page.
func New(svc *service.Service, static fs.FS, logger *slog.Logger) *Handler {
	v := computeAssetVersion(static)
	logger.Info("asset version computed", "version", v)
	return &Handler{svc: svc, logger: logger, version: v, streamInterval: defaultStreamInterval}
}

// RegisterRoutes mounts the JSON API under /api/v1 and the board page at /board.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	api.HandleFunc("/departures", h.Departures).Methods(http.MethodGet)
	api.HandleFunc("/departures/stop/{stopId}", h.DeparturesForStop).Methods(http.MethodGet)
	api.HandleFunc("/departures/live", h.LiveDepartures).Methods(http.MethodPost)
	api.HandleFunc("/alerts", h.Alerts).Methods(http.MethodGet)
	api.HandleFunc("/alerts/line/{lineNumber}", h.AlertsForLine).Methods(http.MethodGet)
	api.HandleFunc("/stops", h.Stops).Methods(http.MethodGet)
	api.HandleFunc("/stops/search", h.SearchStops).Methods(http.MethodGet)

	r.HandleFunc("/board", h.Board).Methods(http.MethodGet)
	r.HandleFunc("/board/stream", h.BoardStream).Methods(http.MethodGet)
}

// Response is the envelope around every API payload.
type Response struct {
	Data      any    `json:"data,omitempty"`
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp"`
	Error     string `json:"error,omitempty"`
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encoding response", "error", err)
	}
}

func (h *Handler) ok(w http.ResponseWriter, data any, message string) {
	h.writeJSON(w, http.StatusOK, Response{Data: data, Success: true, Message: message, Timestamp: timestamp()})
}

// fail maps service errors to status codes. Unexpected errors are logged and hidden.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		status, msg = http.StatusBadRequest, verr.Error()
	case errors.Is(err, service.ErrStopNotFound):
		status, msg = http.StatusNotFound, err.Error()
	default:
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	h.writeJSON(w, status, Response{Success: false, Error: msg, Timestamp: timestamp()})
}

// computeAssetVersion hashes all CSS and JS files in the static tree
// to produce a short version string. Changes to any file produce a new version.
func computeAssetVersion(static fs.FS) string {
	h := md5.New()
	var paths []string
	fs.WalkDir(static, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if ext := path.Ext(p); ext == ".css" || ext == ".js" {
			paths = append(paths, p)
		}
		return nil
	})
	sort.Strings(paths) // deterministic order
	for _, p := range paths {
		f, err := static.Open(p)
		if err != nil {
			continue
		}
		io.Copy(h, f)
		f.Close()
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:8]
}
