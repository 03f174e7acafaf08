package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/molsearch/internal/infrastructure/monitoring/prometheus"
)

// HealthChecker is a component that can report its health.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckFunc adapts a plain function into a HealthChecker.
type CheckFunc struct {
	name string
	fn   func(ctx context.Context) error
}

// NewCheck wraps fn as a named HealthChecker.
func NewCheck(name string, fn func(ctx context.Context) error) CheckFunc {
	return CheckFunc{name: name, fn: fn}
}

func (c CheckFunc) Name() string                    { return c.name }
func (c CheckFunc) Check(ctx context.Context) error { return c.fn(ctx) }

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checkers []HealthChecker
	metrics  *prometheus.AppMetrics
	version  string
	startAt  time.Time
}

// NewHealthHandler creates a HealthHandler. Metrics are optional; when
// present, readiness results feed the per-component health gauge.
func NewHealthHandler(version string, metrics *prometheus.AppMetrics, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{
		checkers: checkers,
		metrics:  metrics,
		version:  version,
		startAt:  time.Now(),
	}
}

// livenessResponse is the response body for the liveness probe.
type livenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// readinessResponse is the response body for the readiness probe.
type readinessResponse struct {
	Status     string                    `json:"status"`
	Components map[string]componentCheck `json:"components,omitempty"`
}

// componentCheck is the health of a single dependency.
type componentCheck struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Liveness handles GET /health. It only confirms the process is serving;
// dependencies are not consulted.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, livenessResponse{
		Status:  "alive",
		Version: h.version,
		Uptime:  time.Since(h.startAt).Truncate(time.Second).String(),
	})
}

// Readiness handles GET /ready. Every registered dependency is checked
// concurrently; any failure yields a 503.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if len(h.checkers) == 0 {
		c.JSON(http.StatusOK, readinessResponse{Status: "ready"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	components := h.checkAll(ctx)

	allHealthy := true
	for _, cc := range components {
		if cc.Status != "healthy" {
			allHealthy = false
			break
		}
	}

	resp := readinessResponse{Status: "ready", Components: components}
	status := http.StatusOK
	if !allHealthy {
		resp.Status = "not_ready"
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

// checkAll runs every checker concurrently and collects the results.
func (h *HealthHandler) checkAll(ctx context.Context) map[string]componentCheck {
	results := make(map[string]componentCheck, len(h.checkers))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, checker := range h.checkers {
		wg.Add(1)
		go func(hc HealthChecker) {
			defer wg.Done()

			start := time.Now()
			err := hc.Check(ctx)
			latency := time.Since(start)

			cc := componentCheck{
				Status:  "healthy",
				Latency: latency.Truncate(time.Microsecond).String(),
			}
			if err != nil {
				cc.Status = "unhealthy"
				cc.Error = err.Error()
			}
			if h.metrics != nil {
				h.metrics.SetComponentHealth(hc.Name(), err == nil)
			}

			mu.Lock()
			results[hc.Name()] = cc
			mu.Unlock()
		}(checker)
	}

	wg.Wait()
	return results
}
