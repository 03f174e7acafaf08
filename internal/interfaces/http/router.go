// Package http wires the gin engine: middleware chain, operational probes,
// and the versioned API routes.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/molsearch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsearch/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/molsearch/internal/interfaces/http/handlers"
	"github.com/turtacn/molsearch/internal/interfaces/http/middleware"
	"github.com/turtacn/molsearch/pkg/errors"
	"github.com/turtacn/molsearch/pkg/types/common"
)

// RouterConfig aggregates everything the router needs. Nil handlers leave
// their routes unregistered; nil middleware inputs disable the corresponding
// concern.
type RouterConfig struct {
	Search  *handlers.SearchHandler
	Convert *handlers.ConvertHandler
	Health  *handlers.HealthHandler

	// MetricsHandler serves GET /metrics (the prometheus exposition handler).
	MetricsHandler http.Handler

	// Metrics enables per-request instrumentation.
	Metrics *prometheus.AppMetrics

	// RateLimiter enables per-client rate limiting when non-nil.
	RateLimiter middleware.RateLimiter
	RateLimit   middleware.RateLimitConfig

	Logger  logging.Logger
	Logging middleware.LoggingConfig
	CORS    middleware.CORSConfig

	// Mode is the gin mode: "debug", "release", or "test". Defaults to release.
	Mode string
}

// NewRouter builds the gin engine with the full middleware chain and all
// configured routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	mode := cfg.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	loggingCfg := cfg.Logging
	if loggingCfg.SkipPaths == nil && loggingCfg.SlowThreshold == 0 {
		loggingCfg = middleware.DefaultLoggingConfig()
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger, loggingCfg))
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter, cfg.RateLimit))
	}

	registerProbes(r, cfg)
	registerAPI(r, cfg)

	r.NoRoute(func(c *gin.Context) {
		resp := common.NewErrorResponse(string(errors.ErrCodeNotFound), "route not found")
		resp.RequestID = middleware.GetRequestID(c)
		c.JSON(http.StatusNotFound, resp)
	})

	return r
}

// registerProbes wires the operational endpoints outside the API prefix.
func registerProbes(r *gin.Engine, cfg RouterConfig) {
	if cfg.Health != nil {
		r.GET("/health", cfg.Health.Liveness)
		r.GET("/ready", cfg.Health.Readiness)
	}
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}
}

// registerAPI wires the versioned API routes.
func registerAPI(r *gin.Engine, cfg RouterConfig) {
	api := r.Group("/api/v1")

	if cfg.Search != nil {
		api.POST("/search", cfg.Search.Search)
		api.GET("/history", cfg.Search.History)
	}
	if cfg.Convert != nil {
		api.POST("/export", cfg.Convert.Export)
		api.POST("/validate", cfg.Convert.Validate)
	}
}
