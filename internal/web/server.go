// Package web provides the HTTP API for shape inspection, mapping previews,
// saved integrations and the entity directory.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/feedmap/internal/config"
	"github.com/JonMunkholm/feedmap/internal/core"
	"github.com/JonMunkholm/feedmap/internal/mapping"
	mw "github.com/JonMunkholm/feedmap/internal/web/middleware"
)

// Backend is the service surface the handlers depend on.
type Backend interface {
	InspectSource(ctx context.Context, src core.Source, refresh bool) (*core.Inspection, error)
	Preview(ctx context.Context, req core.PreviewRequest) (*core.PreviewResponse, error)
	MatchIntegrations(ctx context.Context, doc any) ([]core.IntegrationMatch, error)

	CreateIntegration(ctx context.Context, in core.Integration) (*core.Integration, error)
	GetIntegration(ctx context.Context, id string) (*core.Integration, error)
	ListIntegrations(ctx context.Context, filter core.IntegrationFilter) ([]core.Integration, error)
	UpdateIntegration(ctx context.Context, id string, in core.Integration) (*core.Integration, error)
	DeleteIntegration(ctx context.Context, id string) error

	RunSync(ctx context.Context, id string) (*core.SyncRun, error)
	ListSyncRuns(ctx context.Context, id string, limit int) ([]core.SyncRun, error)

	ListEntities(ctx context.Context) ([]core.Entity, error)
	UpsertEntities(ctx context.Context, entities []core.Entity) error
	DeleteEntity(ctx context.Context, key string) error

	LimiterStatus() core.FetchLimiterStatus
}

// Pinger reports storage health for /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP server.
type Server struct {
	backend Backend
	pinger  Pinger
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server. pinger may be nil.
func NewServer(backend Backend, pinger Pinger, cfg *config.Config) *Server {
	s := &Server{
		backend: backend,
		pinger:  pinger,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(s.cfg.Security))

		r.Get("/catalog", s.handleCatalog)
		r.Get("/status", s.handleStatus)

		// Shape inspection and preview reach out to sources, so they get
		// their own tighter budget.
		r.Group(func(r chi.Router) {
			if s.cfg.Rate.Enabled && s.cfg.Rate.PreviewLimit > 0 {
				r.Use(newRateLimiter(s.cfg.Rate.PreviewLimit, time.Minute).middleware)
			}
			r.Post("/inspect", s.handleInspect)
			r.Post("/inspect/source", s.handleInspectSource)
			r.Post("/preview", s.handlePreview)
		})

		r.Route("/integrations", func(r chi.Router) {
			r.Get("/", s.handleListIntegrations)
			r.Post("/", s.handleCreateIntegration)
			r.Post("/match", s.handleMatchIntegrations)
			r.Get("/{id}", s.handleGetIntegration)
			r.Put("/{id}", s.handleUpdateIntegration)
			r.Delete("/{id}", s.handleDeleteIntegration)
			r.Post("/{id}/sync", s.handleRunSync)
			r.Get("/{id}/runs", s.handleListSyncRuns)
		})

		r.Get("/entities", s.handleListEntities)
		r.Put("/entities", s.handleUpsertEntities)
		r.Delete("/entities/{key}", s.handleDeleteEntity)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// rateLimiter is a fixed-window limiter keyed by client IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int
	window   time.Duration
	now      func() time.Time
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		now:      time.Now,
	}
}

// sweep drops visitors idle for two windows. Called with mu held.
func (rl *rateLimiter) sweep(now time.Time) {
	for ip, v := range rl.visitors {
		if now.Sub(v.lastReset) > rl.window*2 {
			delete(rl.visitors, ip)
		}
	}
}

// allow consumes a token for ip and reports whether one was available,
// along with the time until the window resets.
func (rl *rateLimiter) allow(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[ip]
	if !exists {
		if len(rl.visitors) > 10000 {
			rl.sweep(now)
		}
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastReset: now}
		return true, 0
	}

	if now.Sub(v.lastReset) >= rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = now
		return true, 0
	}

	if v.tokens <= 0 {
		return false, rl.window - now.Sub(v.lastReset)
	}
	v.tokens--
	return true, 0
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := rl.allow(clientIP(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
			writeJSONStatus(w, http.StatusTooManyRequests, ErrorResponse{
				Error:   "rate limit exceeded",
				Message: "Too many requests",
				Action:  "Please wait a moment and try again",
				Code:    "RATE001",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v with a 200 status.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

// writeJSONStatus encodes v with the given status. Encoding errors are only
// logged since the header is already sent.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	data, err := sonic.ConfigStd.Marshal(v)
	if err != nil {
		slog.Error("json encode error", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			slog.Warn("health check failed", "error", err)
			writeJSONStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleCatalog lists the target categories and their fields.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	type category struct {
		ID     mapping.Category      `json:"id"`
		Fields []mapping.TargetField `json:"fields"`
	}
	var out []category
	for _, c := range mapping.Categories() {
		out = append(out, category{ID: c, Fields: mapping.Fields(c)})
	}
	writeJSON(w, map[string]any{
		"categories":  out,
		"formats":     []mapping.Format{mapping.FormatKeyed, mapping.FormatPositional},
		"targetModes": []mapping.TargetMode{mapping.TargetSingle, mapping.TargetCollection},
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"fetches": s.backend.LimiterStatus()})
}
