package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency checked by the readiness probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves liveness, readiness and build information
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	checks    map[string]Pinger
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. Each named check must
// answer for the service to be ready.
func NewSystemHandler(name, version string, checks map[string]Pinger) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		checks:    checks,
		startTime: time.Now(),
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Health reports that the process is up
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready pings every dependency concurrently and answers 503 if any fails
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	results := make(map[string]string, len(h.checks))
	errs := make(map[string]error, len(h.checks))
	type outcome struct {
		name string
		err  error
	}
	outcomes := make(chan outcome, len(h.checks))
	var g errgroup.Group
	for name, check := range h.checks {
		g.Go(func() error {
			outcomes <- outcome{name: name, err: check.Ping(ctx)}
			return nil
		})
	}
	_ = g.Wait()
	close(outcomes)

	for o := range outcomes {
		if o.err != nil {
			results[o.name] = "unavailable"
			errs[o.name] = o.err
			continue
		}
		results[o.name] = "ok"
	}
	if len(errs) > 0 {
		log := logger.L(c.Request.Context())
		for name, err := range errs {
			log.Warn("Readiness check failed", zap.String("check", name), zap.Error(err))
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": results})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": results})
}

// Info returns basic build information
func (h *SystemHandler) Info(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}
