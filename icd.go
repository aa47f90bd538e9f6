// Package icd wires the contact discovery service's components —
// Directory, metrics, and the HTTP transport — into a single long-lived
// value constructed at startup, following the predecessor framework's
// orchestrator/adapter lifecycle (Run starts the transport, Stop shuts it
// down), trimmed to the single HTTP surface this service needs.
package icd

import (
	"context"
	"log/slog"

	"github.com/opencds/icd/config"
	"github.com/opencds/icd/directory"
	"github.com/opencds/icd/metrics"
	"github.com/opencds/icd/transport/httpapi"
)

// Service is the process-wide singleton composed of a Directory, its
// metrics collectors, and the HTTP adapter exposing it.
type Service struct {
	cfg    config.Config
	dir    *directory.Directory
	metric *metrics.Metrics
	server *httpapi.Server
}

// New constructs a Service from cfg.
func New(cfg config.Config, logger *slog.Logger) *Service {
	dir := directory.New(directory.Config{
		Delta:             cfg.Delta(),
		IncrementalPeriod: cfg.IncrementalPeriod(),
		MaxContacts:       cfg.MaxContacts,
	})
	m := metrics.New(dir)
	server := httpapi.New(dir, m, logger)

	return &Service{
		cfg:    cfg,
		dir:    dir,
		metric: m,
		server: server,
	}
}

// Directory exposes the underlying Directory, primarily for tests.
func (s *Service) Directory() *directory.Directory {
	return s.dir
}

// Server exposes the underlying HTTP adapter, primarily for tests.
func (s *Service) Server() *httpapi.Server {
	return s.server
}

// Run starts the HTTP transport and blocks until ctx is cancelled or the
// listener fails.
func (s *Service) Run(ctx context.Context) error {
	return s.server.Start(ctx, s.cfg.ListenAddr)
}

// Stop gracefully shuts down the HTTP transport.
func (s *Service) Stop(ctx context.Context) error {
	return s.server.Stop(ctx)
}
