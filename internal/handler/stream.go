package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"livelink/internal/service"
	"livelink/internal/templates"
)

const defaultStreamInterval = 30 * time.Second

// BoardStream pushes refreshed board content for a pincode as Server-Sent
// Events named "board" until the client disconnects.
func (h *Handler) BoardStream(w http.ResponseWriter, r *http.Request) {
	pincode := r.URL.Query().Get("pincode")
	ctx := r.Context()

	b, err := h.svc.Board(ctx, pincode)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	// The server write timeout would otherwise cut the stream.
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	if !h.sendBoardEvent(ctx, w, rc, b) {
		return
	}

	ticker := time.NewTicker(h.streamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b, err := h.svc.Board(ctx, pincode)
			if err != nil {
				if ctx.Err() == nil {
					h.logger.Error("building streamed board", "pincode", pincode, "error", err)
				}
				continue
			}
			if !h.sendBoardEvent(ctx, w, rc, b) {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// sendBoardEvent renders the board content and writes it as one event, each
// line prefixed with "data: ". It reports false once the client is gone.
func (h *Handler) sendBoardEvent(ctx context.Context, w http.ResponseWriter, rc *http.ResponseController, b *service.Board) bool {
	var buf bytes.Buffer
	if err := templates.BoardContent(b).Render(ctx, &buf); err != nil {
		h.logger.Error("rendering streamed board", "error", err)
		return true
	}

	fmt.Fprintf(w, "event: board\n")
	for _, line := range bytes.Split(buf.Bytes(), []byte("\n")) {
		fmt.Fprintf(w, "data: %s\n", line)
	}
	fmt.Fprintf(w, "\n")
	if err := rc.Flush(); err != nil {
		h.logger.Debug("board stream closed", "error", err)
		return false
	}
	return true
}
