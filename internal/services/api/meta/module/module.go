// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"net/http"
	"time"

	modkit "jarbas/internal/modkit"
	"jarbas/internal/modkit/httpkit"
	str "jarbas/internal/platform/strings"

	metahttp "jarbas/internal/services/api/meta/http"
)

// ServiceName is reported by the health and service endpoints
const ServiceName = "jarbas-api"

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	startedAt time.Time
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		startedAt: time.Now(),
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		metahttp.Register(r, m.handlerDeps())
		if external != nil {
			external(r)
		}
	}

	return m
}

func (m *Module) handlerDeps() metahttp.Deps {
	return metahttp.Deps{ServiceName: ServiceName, StartedAt: m.startedAt, PG: m.deps.PG}
}

// MountHealth mounts the bare liveness probe on r, outside the versioned api
func (m *Module) MountHealth(r httpkit.Router) {
	metahttp.RegisterHealth(r, m.handlerDeps())
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.Prefix(), func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.name, "meta") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
