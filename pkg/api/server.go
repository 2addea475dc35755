// Package api serves the packet archive over HTTP.
//
// Routes under /api/v1 accept collection uploads and expose archived packets
// as JSON. When an API key is configured, those routes require it in the
// X-API-Key header. /metrics is always unauthenticated.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds the HTTP handler for s. metricsHandler is mounted at
// /metrics when non-nil.
func NewRouter(s *Server, metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiKeyMiddleware(s.config.APIKey, s.metrics))

		r.Get("/health", s.metrics.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		r.Post("/collections", s.metrics.InstrumentHandler("POST", "/api/v1/collections", s.handleImport))

		r.Get("/packets", s.metrics.InstrumentHandler("GET", "/api/v1/packets", s.handleListPackets))
		r.Get("/packets/{id}", s.metrics.InstrumentHandler("GET", "/api/v1/packets/{id}", s.handleGetPacket))
		r.Delete("/packets/{id}", s.metrics.InstrumentHandler("DELETE", "/api/v1/packets/{id}", s.handleDeletePacket))
	})

	return r
}

// ListenAndServe serves handler on addr until ctx is cancelled, then shuts
// the server down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
