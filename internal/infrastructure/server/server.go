package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"connectrpc.com/connect"
	connectcors "connectrpc.com/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/eslsoft/wordgym/internal/adapter/connectrpc"
	"github.com/eslsoft/wordgym/internal/entity"
	"github.com/eslsoft/wordgym/internal/infrastructure/config"
	"github.com/eslsoft/wordgym/internal/infrastructure/metrics"
	"github.com/eslsoft/wordgym/internal/usecase"
)

// Server represents the application server
type Server struct {
	config     *config.Config
	httpServer *http.Server
	logger     *logrus.Logger
}

// Handlers groups the Connect services mounted by the server.
type Handlers struct {
	Datasets  *connectrpc.DatasetServiceServer
	Favorites *connectrpc.FavoriteServiceServer
	Quizzes   *connectrpc.QuizServiceServer
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *logrus.Logger, m *metrics.Metrics, datasets usecase.DatasetUsecase, handlers Handlers) *Server {
	return &Server{
		config: cfg,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
			Handler:           NewHandler(logger, m, datasets, handlers),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// NewHandler builds the full HTTP surface: Connect procedures, /healthz and /metrics, wrapped in
// CORS and h2c.
func NewHandler(logger *logrus.Logger, m *metrics.Metrics, datasets usecase.DatasetUsecase, handlers Handlers) http.Handler {
	opts := []connect.HandlerOption{connect.WithInterceptors(Interceptor(logger, m))}

	mux := http.NewServeMux()
	mux.Handle(connectrpc.NewDatasetServiceHandler(handlers.Datasets, opts...))
	mux.Handle(connectrpc.NewFavoriteServiceHandler(handlers.Favorites, opts...))
	mux.Handle(connectrpc.NewQuizServiceHandler(handlers.Quizzes, opts...))
	mux.Handle("/healthz", healthHandler(datasets))
	if m != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{
			ErrorHandling: promhttp.HTTPErrorOnError,
		}))
	}

	return h2c.NewHandler(withCORS(mux), &http2.Server{})
}

func withCORS(h http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: connectcors.AllowedMethods(),
		AllowedHeaders: connectcors.AllowedHeaders(),
		ExposedHeaders: connectcors.ExposedHeaders(),
		MaxAge:         7200,
	}).Handler(h)
}

type healthResponse struct {
	Status     string             `json:"status"`
	Words      int                `json:"words"`
	LastImport *entity.MergeStats `json:"last_import,omitempty"`
}

func healthHandler(datasets usecase.DatasetUsecase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		if datasets != nil {
			resp.Words = len(datasets.Snapshot(r.Context()))
			resp.LastImport = datasets.LastStats()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})
}

// StartHTTP starts the HTTP server
func (s *Server) StartHTTP() error {
	s.logger.Infof("HTTP server starting on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}

	s.logger.Info("Server shutdown complete")
	return nil
}
