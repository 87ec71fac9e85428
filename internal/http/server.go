package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/services"
)

// Options tunes the server. Zero values select defaults.
type Options struct {
	SummaryCacheTTL    time.Duration
	SummaryCacheSize   int
	RateLimitPerMinute int
	// Ping reports store readiness for /readyz.
	Ping func(context.Context) error
}

// Server exposes the ledger as a JSON API.
type Server struct {
	http.Server
	ledger      *services.Ledger
	summaries   *cache.Loader[core.MonthlySummary]
	caches      *cache.Manager
	rateLimiter *rateLimiter
	metrics     *securityMetrics
	logger      *log.Logger
	httpLog     *log.StructuredLogger
	ping        func(context.Context) error
	now         func() time.Time
	started     time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run server. Background
// cleanup starts with the server and stops on Shutdown.
func NewServer(addr string, ledger *services.Ledger, opts Options) *Server {
	if opts.SummaryCacheTTL <= 0 {
		opts.SummaryCacheTTL = 5 * time.Minute
	}
	if opts.SummaryCacheSize <= 0 {
		opts.SummaryCacheSize = 24
	}

	logger := log.Default().WithComponent(log.ComponentHTTP)
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		ledger:      ledger,
		summaries:   cache.NewLoader(cache.NewLRUCache[core.MonthlySummary](opts.SummaryCacheSize, opts.SummaryCacheTTL)),
		caches:      cache.NewManager(),
		rateLimiter: newRateLimiter(opts.RateLimitPerMinute),
		metrics:     &securityMetrics{},
		logger:      logger,
		httpLog:     log.NewStructuredLogger(logger),
		ping:        opts.Ping,
		now:         time.Now,
		started:     time.Now(),
	}

	s.caches.Register(s.summaries.Cache())
	s.caches.StartCleanup(opts.SummaryCacheTTL)
	go s.rateLimiter.startCleanup(5 * time.Minute)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/summary", s.handleSummary)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/search", s.handleSearchTransactions)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/subscriptions", s.handleListSubscriptions)
	mux.HandleFunc("POST /api/subscriptions", s.handleCreateSubscription)
	mux.HandleFunc("POST /api/subscriptions/apply", s.handleApplySubscriptions)
	mux.HandleFunc("PUT /api/subscriptions/{id}", s.handleUpdateSubscription)
	mux.HandleFunc("DELETE /api/subscriptions/{id}", s.handleDeleteSubscription)
	mux.HandleFunc("POST /api/subscriptions/{id}/toggle", s.handleToggleSubscription)

	mux.HandleFunc("GET /api/buckets", s.handleListBuckets)
	mux.HandleFunc("POST /api/buckets", s.handleCreateBucket)
	mux.HandleFunc("PUT /api/buckets/{id}", s.handleEditBucket)
	mux.HandleFunc("DELETE /api/buckets/{id}", s.handleDeleteBucket)
	mux.HandleFunc("POST /api/buckets/{id}/contribute", s.handleContributeBucket)
	mux.HandleFunc("POST /api/buckets/{id}/spend", s.handleSpendBucket)

	mux.HandleFunc("PUT /api/income/{month}", s.handleSetIncome)
	mux.HandleFunc("GET /api/targets", s.handleGetTargets)
	mux.HandleFunc("PUT /api/targets", s.handleSetTargets)
	mux.HandleFunc("GET /api/categories", s.handleListMappings)
	mux.HandleFunc("PUT /api/categories/{category}/meta", s.handleMapCategory)
	mux.HandleFunc("DELETE /api/categories/{category}/meta", s.handleUnmapCategory)

	mux.HandleFunc("GET /api/payroll", s.handleListPayroll)
	mux.HandleFunc("POST /api/payroll", s.handleCreatePayroll)
	mux.HandleFunc("DELETE /api/payroll/{id}", s.handleDeletePayroll)

	s.Handler = s.withMiddleware(mux)
	return s
}

// Shutdown stops background cleanup and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// withMiddleware tags each request with an id and a logger, applies security
// headers and the write rate limit, and logs the outcome.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		reqID := requestID(r)

		ctx := log.IntoContext(r.Context(), s.logger.With(log.FieldRequestID, reqID))
		r = r.WithContext(ctx)
		s.httpLog.LogHTTPStart(ctx, r, clientIP)

		w.Header().Set(requestIDHeader, reqID)
		setSecurityHeaders(w.Header())

		if isSuspicious(r) {
			s.metrics.suspiciousRequests.Add(1)
			log.FromContext(ctx).WarnContext(ctx, "Suspicious request",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		if isWrite(r.Method) && !s.rateLimiter.allow(clientIP) {
			s.metrics.rateLimitHits.Add(1)
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded", "").
				Header("Retry-After", "60").
				Write(rw)
		} else {
			next.ServeHTTP(rw, r)
		}

		s.httpLog.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

// responseWriter captures the status code written by a handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string]any{
		"status":   "ok",
		"uptime":   time.Since(s.started).Round(time.Second).String(),
		"security": s.metrics.snapshot(),
	}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.ping(ctx); err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Readiness check failed",
				log.FieldError, err,
				log.FieldErrorType, log.ErrorTypeDatabase)
			NewJSONResponse().Status(http.StatusServiceUnavailable).
				Data(map[string]string{"status": "not_ready", "store": err.Error()}).
				Write(w)
			return
		}
	}
	NewJSONResponse().Data(map[string]string{"status": "ready", "store": "ok"}).Write(w)
}

// invalidate drops cached summaries after a successful write.
func (s *Server) invalidate() {
	s.summaries.Invalidate()
}
