// Package http exposes the JSON API: statement upload, transaction and
// category management, the dashboard summary, and the copilot endpoint.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sarthakgup/personal-finance-copilot/internal/copilot"
	"github.com/sarthakgup/personal-finance-copilot/internal/log"
	"github.com/sarthakgup/personal-finance-copilot/internal/middleware/ratelimit"
	"github.com/sarthakgup/personal-finance-copilot/internal/middleware/security"
	"github.com/sarthakgup/personal-finance-copilot/internal/middleware/trace"
	"github.com/sarthakgup/personal-finance-copilot/internal/services"
	"github.com/sarthakgup/personal-finance-copilot/internal/store"
)

// Server wires the application services into an HTTP server.
type Server struct {
	service  *services.TransactionService
	store    store.TransactionStore
	resolver *copilot.Resolver
	logger   *log.Logger
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	srv      *http.Server
}

func NewServer(addr string, svc *services.TransactionService, s store.TransactionStore, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}

	server := &Server{
		service:  svc,
		store:    s,
		resolver: copilot.NewResolver(s, logger.WithComponent(log.ComponentCopilot)),
		logger:   logger,
		limiter:  ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		tracer:   trace.NewMiddleware(logger.WithComponent(log.ComponentTrace)),
	}

	server.srv = &http.Server{
		Addr:              addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return server
}

// Routes builds the router. Exposed separately so tests can drive the
// handlers without a listening socket.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	if s.tracer == nil {
		s.tracer = trace.NewMiddleware(s.logger.WithComponent(log.ComponentTrace))
	}
	r.Use(s.tracer.Middleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(log.Middleware(s.logger))
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	if s.limiter != nil {
		r.Use(s.limiter.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	r.Route("/api", func(r chi.Router) {
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/upload", s.handleUploadStatement)
			r.Post("/reclassify", s.handleReclassify)
			r.Put("/{id}", s.handleUpdateTransaction)
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
		})
		r.Get("/dashboard/summary", s.handleDashboardSummary)
		r.Post("/copilot/query", s.handleCopilotQuery)
	})

	return r
}

// Start runs the server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.InfoContext(ctx, "HTTP server shutting down")
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.srv.Shutdown(ctx)
}

type healthResponse struct {
	Status             string `json:"status"`
	TotalRequests      int64  `json:"total_requests"`
	LastResponseTimeMs int64  `json:"last_response_time_ms"`
	RateLimitClients   int    `json:"rate_limit_active_clients"`
}

// handleHealthz reports liveness along with request and rate-limit
// counters for operators.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if s.tracer != nil {
		m := s.tracer.GetMetrics()
		resp.TotalRequests = m.TotalRequests
		resp.LastResponseTimeMs = m.LastResponseTime
	}
	if s.limiter != nil {
		resp.RateLimitClients = s.limiter.ActiveClients()
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleReadyz verifies the store answers before reporting ready.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := s.store.ListCategories(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Readiness check failed", log.FieldError, err)
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
