// Package health serves the store health check and the liveness/readiness probes.
package health

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

type Status string

const (
	StatusOK        Status = "ok"
	StatusError     Status = "error"
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

const checkTimeout = 5 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// StoreResponse is the body of GET /health.
type StoreResponse struct {
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// ProbeResponse is the body of the /health/live and /health/ready probes.
type ProbeResponse struct {
	Status     Status                 `json:"status"`
	Version    string                 `json:"version,omitempty"`
	Uptime     string                 `json:"uptime,omitempty"`
	Checks     map[string]CheckResult `json:"checks,omitempty"`
	ReportedAt time.Time              `json:"reported_at"`
}

type dependency struct {
	name   string
	pinger Pinger
}

type Checker struct {
	store   Pinger
	deps    []dependency
	started time.Time
	version string
	ready   atomic.Bool
}

// NewChecker builds a checker over the catalog store and, when non-nil, the cache.
func NewChecker(store Pinger, cache Pinger, version string) *Checker {
	c := &Checker{
		store:   store,
		deps:    []dependency{{name: "database", pinger: store}},
		started: time.Now(),
		version: version,
	}
	if cache != nil {
		c.deps = append(c.deps, dependency{name: "cache", pinger: cache})
	}
	return c
}

func (c *Checker) SetReady(ready bool) {
	c.ready.Store(ready)
}

func (c *Checker) IsReady() bool {
	return c.ready.Load()
}

// Store answers 200 when the catalog store runs a trivial query, 500 otherwise.
func (c *Checker) Store(ctx echo.Context) error {
	result := ping(ctx.Request().Context(), c.store)
	if result.Status != StatusHealthy {
		return ctx.JSON(http.StatusInternalServerError, StoreResponse{Status: StatusError, Detail: result.Message})
	}
	return ctx.JSON(http.StatusOK, StoreResponse{Status: StatusOK})
}

func (c *Checker) Live(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.probe(StatusHealthy, nil))
}

// Ready fails until SetReady(true) and whenever a dependency stops answering.
func (c *Checker) Ready(ctx echo.Context) error {
	if !c.IsReady() {
		return ctx.JSON(http.StatusServiceUnavailable, c.probe(StatusUnhealthy, map[string]CheckResult{
			"startup": {Status: StatusUnhealthy, Message: "service is still starting up"},
		}))
	}

	status := StatusHealthy
	checks := make(map[string]CheckResult, len(c.deps))
	for _, dep := range c.deps {
		result := ping(ctx.Request().Context(), dep.pinger)
		if result.Status == StatusUnhealthy {
			status = StatusUnhealthy
		}
		checks[dep.name] = result
	}

	code := http.StatusOK
	if status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	return ctx.JSON(code, c.probe(status, checks))
}

func (c *Checker) probe(status Status, checks map[string]CheckResult) ProbeResponse {
	return ProbeResponse{
		Status:     status,
		Version:    c.version,
		Uptime:     time.Since(c.started).Round(time.Second).String(),
		Checks:     checks,
		ReportedAt: time.Now().UTC(),
	}
}

func ping(ctx context.Context, pinger Pinger) CheckResult {
	if pinger == nil {
		return CheckResult{Status: StatusUnhealthy, Message: "not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := pinger.Ping(ctx)
	result := CheckResult{Status: StatusHealthy, Latency: time.Since(start).String()}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Message = err.Error()
	}
	return result
}

func (c *Checker) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/health")
	g.GET("", c.Store)
	g.GET("/live", c.Live)
	g.GET("/ready", c.Ready)
}
