package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"livelink/internal/config"
	"livelink/internal/handler"
	"livelink/internal/service"
)

// Server is the HTTP server for LiveLink.
type Server struct {
	handler http.Handler
	srv     *http.Server
	logger  *slog.Logger
}

// New creates a Server with all routes registered. static is served under /static/.
func New(cfg *config.Config, svc *service.Service, static fs.FS, logger *slog.Logger) *Server {
	r := mux.NewRouter()
	handler.New(svc, static, logger).RegisterRoutes(r)

	fileServer := http.FileServer(http.FS(static))
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", staticCacheHandler(fileServer)))
	r.Handle("/", http.RedirectHandler("/board", http.StatusFound))

	h := withMiddleware(r, logger, cfg.CORSOrigins)

	// Request contexts are cancelled when shutdown starts so that board
	// streams end instead of holding Shutdown open.
	base, cancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return base },
	}
	srv.RegisterOnShutdown(cancel)

	return &Server{
		handler: h,
		logger:  logger,
		srv:     srv,
	}
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
