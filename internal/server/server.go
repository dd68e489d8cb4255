// Package server provides a demo HTTP API in front of the pipeline:
// submit a document, fetch its DocumentRecord once processed, check
// pipeline/sink health, and manage watched directories.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/docintel/internal/config"
	"github.com/hyperjump/docintel/internal/models"
	"github.com/hyperjump/docintel/internal/pipeline"
)

// RecordStore is what the demo API needs from a sink beyond Accept: fetch a
// previously emitted DocumentRecord and count documents by status.
// Satisfied by *sink.SQLiteSink.
type RecordStore interface {
	Get(ctx context.Context, documentID string) (models.DocumentRecord, error)
	CountByStatus(ctx context.Context) (map[models.Status]int64, error)
}

// WatchDirectoryService provides list/add/remove of watched directories
// (optional). Satisfied by *watcher.Watcher.
type WatchDirectoryService interface {
	Directories() []string
	AddDirectory(path string, syncExisting bool) error
	RemoveDirectory(path string) error
}

// Server is the HTTP API in front of a pipeline.Pipeline.
type Server struct {
	pipeline   *pipeline.Pipeline
	records    RecordStore
	cfg        *config.ServerConfig
	logger     *zap.Logger
	httpServer *http.Server

	watch      WatchDirectoryService
	configPath string
	fullCfg    *config.Config
	fullCfgMu  sync.Mutex
}

// NewServer creates a Server with the given dependencies. watchSvc is
// optional; if non-nil, watch directory endpoints are enabled. configPath
// and fullCfg are optional; if both set, add/remove directory persists to
// the config file.
func NewServer(
	p *pipeline.Pipeline,
	records RecordStore,
	cfg *config.ServerConfig,
	logger *zap.Logger,
	watchSvc WatchDirectoryService,
	configPath string,
	fullCfg *config.Config,
) *Server {
	return &Server{
		pipeline:   p,
		records:    records,
		cfg:        cfg,
		logger:     logger,
		watch:      watchSvc,
		configPath: configPath,
		fullCfg:    fullCfg,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/documents", s.handleSubmitDocument)
	r.Get("/api/v1/documents/{id}", s.handleGetDocument)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/api/v1/watch/directories", s.handleWatchDirectoriesList)
	r.Post("/api/v1/watch/directories", s.handleWatchDirectoriesAdd)
	r.Delete("/api/v1/watch/directories", s.handleWatchDirectoriesRemove)
	r.Get("/health", s.handleHealth)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	if s.logger != nil {
		s.logger.Info("starting server", zap.String("addr", addr))
	}
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
