// Package httpapi is the HTTP request-handling boundary: it decodes the
// binary envelope, runs the pre-operation sweep, delegates to Directory,
// maps the result to a Result code, and encodes the reply. It never
// manipulates UserSet, ExpiringSet, or LeakyBucket directly.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opencds/icd/directory"
	"github.com/opencds/icd/metrics"
	"github.com/opencds/icd/transport/httpapi/middleware/logging"
	"github.com/opencds/icd/transport/httpapi/middleware/recover"
)

// Server is the HTTP adapter exposing Directory over the wire protocol
// described in the service's external interface.
type Server struct {
	dir     *directory.Directory
	metrics *metrics.Metrics
	router  chi.Router
	http    *http.Server

	// clock is overridden in tests to control the time passed to
	// Directory operations.
	clock func() time.Time
}

// New builds a Server wired to dir and m, logging through logger (or
// slog.Default() if nil).
func New(dir *directory.Directory, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{dir: dir, metrics: m, clock: time.Now}

	r := chi.NewRouter()
	r.Use(recover.New(logger))
	r.Use(logging.New(logger))

	r.Post("/user/register", s.handleRegister)
	r.Post("/user/delete", s.handleDelete)
	r.Post("/discovery/full", s.handleFullSync)
	r.Post("/discovery/incremental", s.handleIncrementalSync)

	r.Get("/reset", s.handleReset)
	r.Get("/test/create/{n}", s.handleCreateUsers)
	r.Post("/test/add/many", s.handleAddMany)

	r.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))

	s.router = r
	return s
}

// Router exposes the underlying chi.Router, primarily for tests.
func (s *Server) Router() chi.Router {
	return s.router
}

// Start begins serving on addr, blocking until the context is cancelled
// or the listener fails.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Stop(context.Background())
	}
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
