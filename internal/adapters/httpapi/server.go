package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/phishguard/phishguard/internal/core"
	"github.com/phishguard/phishguard/internal/utils"
)

// Server exposes the analyzer over a JSON HTTP API
type Server struct {
	service         *core.AnalyzerService
	text            *utils.TextProcessor
	logger          *zap.Logger
	listenAddr      string
	maxMessageBytes int
	httpServer      *http.Server
}

// NewServer creates a new HTTP API frontend
func NewServer(
	service *core.AnalyzerService,
	text *utils.TextProcessor,
	logger *zap.Logger,
	listenAddr string,
	maxMessageBytes int,
) *Server {
	return &Server{
		service:         service,
		text:            text,
		logger:          logger,
		listenAddr:      listenAddr,
		maxMessageBytes: maxMessageBytes,
	}
}

// Router builds the HTTP handler tree
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/messages/analyze", s.handleAnalyze)
		r.Post("/messages/analyze/batch", s.handleAnalyzeBatch)
		r.Get("/patterns", s.handlePatterns)
	})

	return r
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.listenAddr,
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("HTTP API starting", zap.String("address", s.listenAddr))

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// Process analyzes a single raw message
func (s *Server) Process(ctx context.Context, raw string) (*core.Verdict, error) {
	return s.service.AnalyzeMessage(ctx, s.text.ProcessText(raw, s.maxMessageBytes))
}
