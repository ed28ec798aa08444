package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/askdocs/askdocs/internal/ingest"
	"github.com/askdocs/askdocs/internal/rag"
	"github.com/askdocs/askdocs/internal/store"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:8080"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout is the timeout for reading request headers.
	// This prevents Slowloris attacks (CWE-400).
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response.
	// Generous because /chat waits on model inference.
	WriteTimeout = 120 * time.Second

	// IdleTimeout is the maximum time to wait for the next request on
	// keep-alive connections.
	IdleTimeout = 120 * time.Second
)

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger       *slog.Logger
	Orchestrator *rag.Orchestrator // Required
	Pipeline     *ingest.Pipeline  // Optional: nil disables /ingest
	Store        *store.Store      // Required
	Pool         *pgxpool.Pool     // Optional: nil degrades /ready to liveness
	TrustProxy   bool              // Trust X-Real-IP/X-Forwarded-For (behind reverse proxy)
	RateLimit    float64           // Chat tokens refilled per second per IP (0 = default 1)
	RateBurst    int               // Chat rate limiter burst per IP (0 = default 30)
}

// Server is the JSON API HTTP server.
type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
}

// NewServer creates a new API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Orchestrator == nil {
		return nil, errors.New("orchestrator is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ch := &chatHandler{orchestrator: cfg.Orchestrator, logger: logger}
	sh := &sessionHandler{store: cfg.Store, logger: logger}
	fh := &feedbackHandler{store: cfg.Store, logger: logger}
	cth := &citationHandler{store: cfg.Store, logger: logger}
	dh := &documentHandler{store: cfg.Store, logger: logger}

	// Chat is the only model-backed endpoint, so it alone carries the
	// per-IP rate limit.
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = 1.0
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 30
	}
	rl := newRateLimiter(limit, burst)
	limited := rateLimitMiddleware(rl, cfg.TrustProxy, logger)

	mux := http.NewServeMux()
	mux.Handle("POST /chat", limited(http.HandlerFunc(ch.answer)))
	mux.HandleFunc("POST /sessions", sh.create)
	mux.HandleFunc("GET /sessions/{id}/history", sh.history)
	mux.HandleFunc("POST /feedback", fh.submit)
	mux.HandleFunc("GET /citations/{id}", cth.get)
	mux.HandleFunc("GET /documents", dh.list)
	mux.HandleFunc("DELETE /documents/{id}", dh.delete)

	if cfg.Pipeline != nil {
		ih := &ingestHandler{pipeline: cfg.Pipeline, docs: cfg.Store, logger: logger}
		mux.HandleFunc("POST /ingest", ih.trigger)
	} else {
		logger.Warn("ingestion pipeline not configured, /ingest disabled")
	}

	// Middleware stack (outermost first): Recovery -> Logging -> Routes
	var handler http.Handler = mux
	handler = loggingMiddleware(logger)(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Top-level mux keeps health probes out of the middleware stack.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health)
	topMux.Handle("GET /ready", readiness(cfg.Pool))
	topMux.Handle("/", handler)

	return &Server{mux: topMux, logger: logger}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully within ShutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
