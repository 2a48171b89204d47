// Package server exposes the road extraction pipeline over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/roadsketch/roadsketch/pkg/roads"
)

// maxRequestBody caps request body size across all routes.
const maxRequestBody = 10 * 1024 * 1024 // 10MB

// Config holds the HTTP server settings.
type Config struct {
	Addr           string
	RateLimit      rate.Limit
	RateBurst      int
	RequestTimeout time.Duration
}

// DefaultConfig returns the settings used when flags are absent.
func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		RateLimit:      rate.Limit(10),
		RateBurst:      20,
		RequestTimeout: 2 * time.Minute,
	}
}

// Server serves the city roads API.
type Server struct {
	pipeline   *roads.Pipeline
	logger     *slog.Logger
	limiter    *RateLimiter
	httpServer *http.Server
}

// NewServer creates a server around the given pipeline.
func NewServer(pipeline *roads.Pipeline, logger *slog.Logger, cfg Config) *Server {
	s := &Server{
		pipeline: pipeline,
		logger:   logger,
		limiter:  NewRateLimiter(cfg.RateLimit, cfg.RateBurst),
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RequestTimeout,
		IdleTimeout:  2 * time.Minute,
	}

	return s
}

// Handler builds the full middleware chain around the API routes.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.GET("/api/city-roads", s.handleCityRoads)
	router.GET("/api/city-roads/svg", s.handleCitySVG)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})

	return alice.New(
		corsHandler.Handler,
		SecurityHeaders,
		RequestSizeLimiter(maxRequestBody),
		s.recoverPanic,
		LoggingMiddleware(s.logger),
		TracingMiddleware(),
		MetricsMiddleware(),
		s.limiter.Middleware,
	).Then(router)
}

// ListenAndServe runs the server until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.httpServer.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.limiter.Stop()
	return s.httpServer.Shutdown(shutdownCtx)
}

// recoverPanic converts handler panics into 500 responses.
func (s *Server) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("handler panic", "panic", rec, "path", r.URL.Path)
				w.Header().Set("Connection", "close")
				writeErrorBody(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
