// Package http serves the ledger UI and its HTMX endpoints.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/ledger"
	"ledger/internal/log"
	appweb "ledger/web"
)

type Server struct {
	http.Server
	templates   *template.Template
	store       ledger.Store
	querier     ledger.Querier
	rateLimiter *rateLimiter

	// Aggregates are cheap to recompute but hot on the dashboard, so the
	// rendered inputs are cached and flushed on every mutation.
	recordsCache  *cache.TTLCache[[]core.Record]
	overviewCache *cache.TTLCache[core.Overview]
	trendCache    *cache.TTLCache[[]core.MonthTotal]

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run
// http.Server backed by the given store.
func NewServer(addr string, store ledger.Store, querier ledger.Querier, cacheTTL time.Duration) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:         store,
		querier:       querier,
		rateLimiter:   newRateLimiter(),
		recordsCache:  cache.New[[]core.Record](100, cacheTTL),
		overviewCache: cache.New[core.Overview](10, cacheTTL),
		trendCache:    cache.New[[]core.MonthTotal](10, cacheTTL),
	}

	if cacheTTL > 0 {
		s.recordsCache.StartJanitor(10 * time.Minute)
		s.overviewCache.StartJanitor(10 * time.Minute)
		s.trendCache.StartJanitor(10 * time.Minute)
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/", s.withMiddleware(s.handleIndex))
	mux.HandleFunc("/expenses", s.withMiddleware(s.handleCreateExpense))
	mux.HandleFunc("/expenses/delete", s.withMiddleware(s.handleDeleteExpense))
	mux.HandleFunc("/expenses/clear", s.withMiddleware(s.handleClearLedger))
	// UI partials
	mux.HandleFunc("/ui/expenses", s.withMiddleware(s.handleExpensesPartial))
	mux.HandleFunc("/ui/analytics", s.withMiddleware(s.handleAnalyticsPartial))

	return s
}

// Shutdown stops background goroutines, then the HTTP server itself.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.recordsCache.Close()
		s.overviewCache.Close()
		s.trendCache.Close()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withMiddleware adds security headers, rate limiting and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		reqLogger := slog.Default().With(
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP,
		)
		ctx := log.IntoContext(r.Context(), reqLogger)
		r = r.WithContext(ctx)

		reqLogger.InfoContext(ctx, "Request started",
			"user_agent", r.Header.Get("User-Agent"))

		// Mutating requests are rate limited per client IP.
		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			reqLogger.WarnContext(ctx, "Rate limit exceeded")
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		reqLogger.InfoContext(ctx, "Request completed",
			log.FieldStatus, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds())
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	default:
		return false
	}
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Readiness means the store answers queries.
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if _, err := s.store.All(ctx); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Readiness check failed", log.FieldError, err)
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// invalidateViews flushes every derived-view cache after a mutation.
func (s *Server) invalidateViews() {
	s.recordsCache.InvalidateAll()
	s.overviewCache.InvalidateAll()
	s.trendCache.InvalidateAll()
}

const queryTimeout = 7 * time.Second

// listRecords returns records for the given filter, serving from cache
// when possible. An empty filter means the full ledger.
func (s *Server) listRecords(ctx context.Context, f recordFilter) ([]core.Record, error) {
	key := f.cacheKey()
	if items, found := s.recordsCache.Get(key); found {
		log.FromContext(ctx).DebugContext(ctx, "Records cache hit", "key", key, "count", len(items))
		out := make([]core.Record, len(items))
		copy(out, items)
		return out, nil
	}

	cctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var (
		items []core.Record
		err   error
	)
	switch {
	case f.category != "":
		items, err = s.querier.ListByCategory(cctx, f.category)
	case f.year != 0:
		items, err = s.querier.ListByMonth(cctx, f.year, f.month)
	default:
		items, err = s.store.All(cctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list records (%s): %w", key, err)
	}

	s.recordsCache.Set(key, items)
	return items, nil
}

func (s *Server) getOverview(ctx context.Context) (core.Overview, error) {
	if ov, found := s.overviewCache.Get("overview"); found {
		return ov, nil
	}

	cctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	ov, err := s.querier.Overview(cctx)
	if err != nil {
		return core.Overview{}, fmt.Errorf("read overview: %w", err)
	}

	s.overviewCache.Set("overview", ov)
	return ov, nil
}

func (s *Server) getTrend(ctx context.Context) ([]core.MonthTotal, error) {
	if trend, found := s.trendCache.Get("trend"); found {
		return trend, nil
	}

	cctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	trend, err := s.querier.Trend(cctx)
	if err != nil {
		return nil, fmt.Errorf("read trend: %w", err)
	}

	s.trendCache.Set("trend", trend)
	return trend, nil
}

// recordFilter narrows the expense list partial: by category, by month
// or neither.
type recordFilter struct {
	category string
	year     int
	month    int
}

func (f recordFilter) cacheKey() string {
	switch {
	case f.category != "":
		return "cat:" + f.category
	case f.year != 0:
		return "month:" + strconv.Itoa(f.year) + "-" + strconv.Itoa(f.month)
	default:
		return "all"
	}
}
