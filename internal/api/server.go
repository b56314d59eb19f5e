// Package api serves the composition pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz
//	POST /v1/translate            label file -> NGlyph document
//	POST /v1/encode               NGlyph document -> audio tags
//	POST /v1/decode               audio tags -> NGlyph document
//	POST /v1/compositions         store an NGlyph document
//	GET  /v1/compositions/{id}    fetch a stored document
//
// Errors are returned as {"error": {"code": ..., "message": ...}} with the
// HTTP status derived from the error code.
package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/glyphtools/pkg/pipeline"
	"github.com/matzehuels/glyphtools/pkg/store"
)

// DefaultMaxBody limits request bodies.
const DefaultMaxBody = 8 << 20

// Server handles API requests. Audio files never reach the server; encode
// and decode work on tag values only.
type Server struct {
	Runner  *pipeline.Runner
	Store   store.Store
	Logger  *log.Logger
	MaxBody int64
}

// New creates a server. A nil store keeps compositions in memory.
func New(runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if st == nil {
		st = store.NewMemoryStore()
	}
	return &Server{Runner: runner, Store: st, Logger: logger, MaxBody: DefaultMaxBody}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(s.limitBody)
		r.Post("/translate", s.handleTranslate)
		r.Post("/encode", s.handleEncode)
		r.Post("/decode", s.handleDecode)
		r.Post("/compositions", s.handlePutComposition)
		r.Get("/compositions/{id}", s.handleGetComposition)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.Logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
