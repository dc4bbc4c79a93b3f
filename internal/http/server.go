// Package http exposes the expense tracker as a JSON API: expense CRUD,
// vendor and category aggregations, summaries, chart data, and exports.
package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"spendtrack/internal/cache"
	"spendtrack/internal/log"
	"spendtrack/internal/services"
)

const aggCacheSize = 200

type Server struct {
	http.Server

	expenses *services.ExpenseService
	exports  *services.ExportService

	rateLimiter *rateLimiter
	metrics     securityMetrics
	logger      *log.Logger
	structured  *log.StructuredLogger

	// aggCache holds serialized responses for GET aggregation endpoints,
	// keyed by request URI. Purged on every expense mutation.
	aggCache     *cache.LRUCache[[]byte]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, expenses *services.ExpenseService, exports *services.ExportService, logger *log.Logger, cacheTTL time.Duration) *Server {
	mux := http.NewServeMux()

	httpLogger := logger.WithComponent(log.ComponentHTTP)
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		expenses:     expenses,
		exports:      exports,
		rateLimiter:  newRateLimiter(),
		logger:       httpLogger,
		structured:   log.NewStructuredLogger(httpLogger),
		aggCache:     cache.NewLRUCache[[]byte](aggCacheSize, cacheTTL),
		cacheManager: cache.NewManager(logger),
	}
	s.cacheManager.Register(s.aggCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/expenses", s.secured(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", s.secured(s.handleCreateExpense))
	mux.HandleFunc("GET /api/expenses/{id}", s.secured(s.handleGetExpense))
	mux.HandleFunc("PUT /api/expenses/{id}", s.secured(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.secured(s.handleDeleteExpense))

	mux.HandleFunc("GET /api/vendors", s.secured(s.cached(s.handleListVendors)))
	mux.HandleFunc("GET /api/vendors/summary", s.secured(s.cached(s.handleVendorSummary)))
	mux.HandleFunc("GET /api/vendors/chart", s.secured(s.cached(s.handleVendorChart)))
	mux.HandleFunc("GET /api/vendors/{name}/trends", s.secured(s.cached(s.handleVendorTrends)))

	mux.HandleFunc("GET /api/summary", s.secured(s.cached(s.handleSummary)))
	mux.HandleFunc("GET /api/categories/top", s.secured(s.cached(s.handleTopCategories)))
	mux.HandleFunc("GET /api/categories/chart", s.secured(s.cached(s.handleCategoryChart)))
	mux.HandleFunc("GET /api/months", s.secured(s.cached(s.handleAvailableMonths)))

	mux.HandleFunc("GET /api/export/csv", s.secured(s.handleExportCSV))
	mux.HandleFunc("GET /api/export/templates", s.secured(s.handleExportTemplates))
	mux.HandleFunc("POST /api/export/jobs", s.secured(s.handleCreateExportJob))
	mux.HandleFunc("GET /api/export/jobs", s.secured(s.handleListExportJobs))
	mux.HandleFunc("GET /api/export/jobs/{id}", s.secured(s.handleGetExportJob))
	mux.HandleFunc("GET /api/export/jobs/{id}/download", s.secured(s.handleDownloadExportJob))
	mux.HandleFunc("POST /api/export/schedules", s.secured(s.handleCreateSchedule))
	mux.HandleFunc("GET /api/export/schedules", s.secured(s.handleListSchedules))
	mux.HandleFunc("PATCH /api/export/schedules/{id}", s.secured(s.handleUpdateSchedule))
	mux.HandleFunc("DELETE /api/export/schedules/{id}", s.secured(s.handleDeleteSchedule))

	return s
}

// secured wraps a handler with client IP extraction, rate limiting, security
// headers, and request logging.
func (s *Server) secured(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), log.ContextKey("request_id"), requestID)
		r = r.WithContext(ctx)

		s.structured.LogHTTPStart(ctx, r, clientIP)

		if detectSuspiciousRequest(r, &s.metrics) {
			s.logger.WarnContext(ctx, "Suspicious request detected",
				"client_ip", clientIP, "url", r.URL.String())
		}

		// Mutations are rate limited per client.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP, &s.metrics) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.structured.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// cached serves GET aggregation responses from the LRU cache keyed by request
// URI. Only 200 responses are stored.
func (s *Server) cached(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.RequestURI()
		if body, ok := s.aggCache.Get(key); ok {
			s.logger.DebugContext(r.Context(), "Aggregation cache hit", "key", key)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "hit")
			_, _ = w.Write(body)
			return
		}

		rec := &recordingWriter{responseWriter: responseWriter{ResponseWriter: w, statusCode: http.StatusOK}}
		next(rec, r)
		if rec.statusCode == http.StatusOK && rec.body.Len() > 0 {
			s.aggCache.Set(key, rec.body.Bytes())
		}
	}
}

// invalidateAggregations drops every cached aggregation. Called after any
// expense mutation.
func (s *Server) invalidateAggregations() {
	s.aggCache.Purge()
}

// Shutdown stops background cleanup and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// SuspiciousRequestCount reports how many suspicious requests were seen.
func (s *Server) SuspiciousRequestCount() int64 {
	return atomic.LoadInt64(&s.metrics.suspiciousRequests)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
