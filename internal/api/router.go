package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/arbiter-ai/arbiter/internal/aaf"
	"github.com/arbiter-ai/arbiter/internal/api/handlers"
	mw "github.com/arbiter-ai/arbiter/internal/api/middleware"
	"github.com/arbiter-ai/arbiter/internal/collaborators/pattern"
	"github.com/arbiter-ai/arbiter/internal/collaborators/policy"
	"github.com/arbiter-ai/arbiter/internal/config"
	"github.com/arbiter-ai/arbiter/internal/domain"
	"github.com/arbiter-ai/arbiter/internal/memory"
	"github.com/arbiter-ai/arbiter/internal/normalizer"
	"github.com/arbiter-ai/arbiter/internal/resolver"
)

// App holds the router and the memory store for lifecycle management.
type App struct {
	Router       *chi.Mux
	Memory       *memory.Store
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// Deps are the collaborator implementations NewApp wires into the
// resolution pipeline. A nil field falls back to the in-repo reference
// adapter, so Arbiter runs standalone without any external services.
type Deps struct {
	Pattern        domain.PatternDetector
	Policy         domain.PolicyEvaluator
	BlockedDomains []string
}

// NewApp builds the full HTTP surface over one open memory.Store.
func NewApp(mem *memory.Store, solverCfg aaf.Config, normCfg normalizer.Config, deps Deps, logger *zap.Logger) *App {
	patternDetector := deps.Pattern
	if patternDetector == nil {
		patternDetector = pattern.New()
	}
	policyEvaluator := deps.Policy
	if policyEvaluator == nil {
		policyEvaluator = policy.New(deps.BlockedDomains)
	}

	norm := normalizer.New(mem, normCfg, logger)
	solver := aaf.New(solverCfg)
	res := resolver.New()

	resolveHandler := handlers.NewResolveHandler(patternDetector, policyEvaluator, norm, solver, res, mem, logger)
	memoryHandler := handlers.NewMemoryHandler(mem)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Memory:    mem,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters).
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	r.Get("/health", healthHandler())
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		apiKeys := config.APIKeys()
		if len(apiKeys) > 0 {
			r.Use(mw.APIKeyAuth(apiKeys))
		}

		r.Post("/resolve", resolveHandler.Resolve)

		r.Route("/memory", func(r chi.Router) {
			r.Get("/stats", memoryHandler.Stats)
			r.Get("/{domain}/reputation", memoryHandler.Reputation)
			r.Get("/{domain}/entries", memoryHandler.Query)
		})
	})

	return app
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure implementations satisfy interfaces at compile time.
var (
	_ domain.MemoryStore     = (*memory.Store)(nil)
	_ domain.PatternDetector = (*pattern.Detector)(nil)
	_ domain.PolicyEvaluator = (*policy.Evaluator)(nil)
)
