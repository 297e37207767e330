// Package http exposes the store as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"moneta/internal/cache"
	"moneta/internal/core"
	"moneta/internal/log"
	"moneta/internal/middleware/ratelimit"
	"moneta/internal/middleware/security"
	"moneta/internal/middleware/trace"
	"moneta/internal/store"
)

// Options tunes the server. Zero values pick the defaults.
type Options struct {
	Logger            *log.Logger
	SummaryCacheSize  int
	SummaryCacheTTL   time.Duration
	CleanupInterval   time.Duration
	RequestsPerMinute int
	TrustedProxies    []string
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = log.Discard()
	}
	if o.SummaryCacheSize <= 0 {
		o.SummaryCacheSize = 64
	}
	if o.CleanupInterval <= 0 {
		o.CleanupInterval = 10 * time.Minute
	}
	if o.RequestsPerMinute <= 0 {
		o.RequestsPerMinute = 120
	}
	if o.TrustedProxies == nil {
		o.TrustedProxies = security.DefaultTrustedProxies
	}
	return o
}

// Server serves the tracker API for one store.
type Server struct {
	http.Server
	store  *store.Store
	logger *log.Logger

	// summaries are keyed by store revision, so a mutation never needs
	// to invalidate anything
	summaryCache *cache.LRUCache[core.Summary]
	cacheManager *cache.Manager
	rateLimiter  *ratelimit.Limiter
	tracer       *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server. Background cleanup starts immediately; call Shutdown to stop it.
func NewServer(addr string, st *store.Store, opts Options) (*Server, error) {
	opts = opts.withDefaults()
	resolver, err := security.NewIPResolver(opts.TrustedProxies...)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger.WithComponent(log.ComponentHTTP)
	s := &Server{
		store:        st,
		logger:       logger,
		summaryCache: cache.NewLRUCache[core.Summary](opts.SummaryCacheSize, opts.SummaryCacheTTL),
		cacheManager: cache.NewManager(opts.Logger),
		rateLimiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		tracer:       trace.NewMiddleware(opts.Logger, resolver.ClientIP),
	}
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(opts.CleanupInterval)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("POST /api/transactions", s.handleAddTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleEditTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("POST /api/categories", s.handleAddCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)
	mux.HandleFunc("POST /api/import", s.handleImport)
	mux.HandleFunc("POST /api/demo", s.handleLoadDemo)
	mux.HandleFunc("DELETE /api/demo", s.handleClearDemo)
	mux.HandleFunc("POST /api/display-mode/toggle", s.handleToggleDisplayMode)

	limited := s.rateLimiter.Middleware(resolver.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded")
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
	})
	var handler http.Handler = mux
	handler = limited(handler)
	handler = security.Headers(security.APIHeadersConfig())(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)

		stats := s.summaryCache.Stats()
		m := s.tracer.GetMetrics()
		s.logger.InfoContext(ctx, "HTTP server stopped",
			"requests", m.TotalRequests,
			"server_errors", m.ErrorResponses,
			"avg_response_time", m.AverageResponseTime.String(),
			"rate_limited", s.rateLimiter.GetMetrics().TotalHits,
			"summary_cache_hits", stats.Hits,
			"summary_cache_misses", stats.Misses)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
