// Package server provides the HTTP API for asking questions, ingesting PDFs,
// and locating evidence highlights.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Soham2704/Pdf-chat/internal/config"
	"github.com/Soham2704/Pdf-chat/internal/indexer"
	"github.com/Soham2704/Pdf-chat/internal/models"
	"github.com/Soham2704/Pdf-chat/internal/storage"
)

// Answerer answers a question over the ingested corpus.
type Answerer interface {
	Answer(ctx context.Context, question string, candidateFiles []string) (*models.Answer, error)
}

// Ingester rebuilds the corpus from PDF paths.
type Ingester interface {
	IngestFiles(ctx context.Context, paths []string) (*indexer.Summary, error)
}

// Highlighter resolves a snippet to page rectangles.
type Highlighter interface {
	Locate(ctx context.Context, sourceDocument string, pageNumber int, snippet string) ([]models.Rectangle, error)
}

// Corpus exposes the live chunk store state the status endpoint reports.
type Corpus interface {
	Size() int
	Sources() []string
}

// Server is the HTTP server for the API.
type Server struct {
	pipeline Answerer
	ingester Ingester
	lookup   Highlighter
	corpus   Corpus
	db       storage.Storage
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	pipeline Answerer,
	ingester Ingester,
	lookup Highlighter,
	corpus Corpus,
	db storage.Storage,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		pipeline: pipeline,
		ingester: ingester,
		lookup:   lookup,
		corpus:   corpus,
		db:       db,
		config:   cfg,
		logger:   logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/ask", s.handleAsk)
	r.Post("/api/v1/ingest", s.handleIngest)
	r.Post("/api/v1/highlight", s.handleHighlight)
	r.Get("/api/v1/documents", s.handleListDocuments)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
