package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/study-planner/internal/service"
)

const readinessTimeout = 2 * time.Second

// Pinger reports whether a backing dependency answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping implements Pinger.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// ServiceInfo describes the running service on the root endpoint.
type ServiceInfo struct {
	Name     string          `json:"name"`
	Env      string          `json:"env"`
	Features map[string]bool `json:"features"`
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics      *service.MetricsService
	dependencies map[string]Pinger
	info         ServiceInfo
	startedAt    time.Time
}

// NewMetricsHandler constructs a metrics handler. dependencies are checked
// by the readiness probe.
func NewMetricsHandler(metrics *service.MetricsService, info ServiceInfo, dependencies map[string]Pinger) *MetricsHandler {
	if dependencies == nil {
		dependencies = map[string]Pinger{}
	}
	return &MetricsHandler{metrics: metrics, dependencies: dependencies, info: info, startedAt: time.Now().UTC()}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for liveness usage.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready pings every configured dependency.
func (h *MetricsHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	checks := make(map[string]string, len(h.dependencies))
	status := http.StatusOK
	for name, dep := range h.dependencies {
		if err := dep.Ping(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}

// Info returns service metadata and counters.
func (h *MetricsHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":  h.info,
		"uptime_s": int64(time.Since(h.startedAt).Seconds()),
		"metrics":  h.metrics.Snapshot(),
	})
}
