package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/shiftbook/internal/logging"
)

// Server runs the shift service HTTP endpoint.
type Server struct {
	httpServer *http.Server
	logger     logging.Logger
}

// NewServer builds the router and the underlying http.Server.
func NewServer(addr string, h *Handler, secret []byte, logger logging.Logger) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/register", h.RegisterUser)
	mux.HandleFunc("POST /api/login", h.Login)
	mux.HandleFunc("POST /api/refresh", h.Refresh)
	mux.HandleFunc("GET /api/ping", h.Ping)

	authed := AuthMiddleware(secret)
	mux.Handle("GET /api/shifts", authed(http.HandlerFunc(h.GetShift)))
	mux.Handle("PUT /api/shifts", authed(http.HandlerFunc(h.PutShift)))
	mux.Handle("DELETE /api/shifts", authed(http.HandlerFunc(h.DeleteShift)))
	mux.Handle("GET /api/export/upload-url", authed(http.HandlerFunc(h.ExportUploadURL)))

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	s.logger.Info(ctx, "http server started", "addr", s.httpServer.Addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.logger.Info(ctx, "http server stopped")
		return nil
	}
}
