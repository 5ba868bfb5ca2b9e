// Package http provides meta endpoints
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"jarbas/internal/core/version"
	"jarbas/internal/modkit/httpkit"
)

// Pinger is satisfied by adapters that expose Ping
type Pinger interface {
	Ping(stdctx.Context) error
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any

	// now is swapped in tests
	now func() time.Time
}

type handlers struct {
	deps Deps
}

func newHandlers(d Deps) *handlers {
	if d.now == nil {
		d.now = time.Now
	}
	return &handlers{deps: d}
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	h := newHandlers(d)

	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
}

// RegisterHealth mounts only the liveness probe, for the server root
func RegisterHealth(r httpkit.Router, d Deps) {
	httpkit.Get(r, "/health", newHandlers(d).health)
}

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool   `json:"ok"      example:"true"`
	Service string `json:"service" example:"jarbas-api"`
	Started string `json:"started" example:"2026-10-01T13:00:00Z"`
	Now     string `json:"now"     example:"2026-10-01T13:05:00Z"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"   example:"pg"`
	Status string `json:"status" example:"ok"` // ok fail skipped unknown
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432 connect: connection refused"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"` // ok degraded fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2026-10-01T13:05:00Z"`
}

// ServiceResponse describes service info
type ServiceResponse struct {
	Name    string            `json:"name"    example:"jarbas-api"`
	Started string            `json:"started" example:"2026-10-01T13:00:00Z"`
	Uptime  int64             `json:"uptime"  example:"300"`
	Build   version.BuildInfo `json:"build"`
}

func (h *handlers) stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// GET /health
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.stamp(h.deps.StartedAt),
		Now:     h.stamp(h.deps.now()),
	}, nil
}

// GET /ready answers 503 when a dependency fails its ping
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	pg := check(ctx, "pg", h.deps.PG)

	resp := ReadyResponse{
		Status: "ok",
		Checks: []ReadyCheck{pg},
		Now:    h.stamp(h.deps.now()),
	}
	switch pg.Status {
	case "ok":
		return resp, nil
	case "fail":
		resp.Status = "fail"
		return httpkit.Status(http.StatusServiceUnavailable, resp), nil
	}
	resp.Status = "degraded"
	return resp, nil
}

func check(ctx stdctx.Context, name string, c any) ReadyCheck {
	if c == nil {
		return ReadyCheck{Name: name, Status: "skipped"}
	}
	p, ok := c.(Pinger)
	if !ok {
		return ReadyCheck{Name: name, Status: "unknown"}
	}
	if err := p.Ping(ctx); err != nil {
		return ReadyCheck{Name: name, Status: "fail", Error: err.Error()}
	}
	return ReadyCheck{Name: name, Status: "ok"}
}

// GET /version
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

// GET /service
func (h *handlers) service(_ *http.Request) (any, error) {
	return ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: h.stamp(h.deps.StartedAt),
		Uptime:  int64(h.deps.now().Sub(h.deps.StartedAt) / time.Second),
		Build:   version.Info(),
	}, nil
}
