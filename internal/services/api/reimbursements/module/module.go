// Package module wires the reimbursements read endpoint into the API using modkit
package module

import (
	"net/http"

	modkit "jarbas/internal/modkit"
	"jarbas/internal/modkit/httpkit"
	str "jarbas/internal/platform/strings"
	rhttp "jarbas/internal/services/api/reimbursements/http"
	rrepo "jarbas/internal/services/api/reimbursements/repo"
	rsvc "jarbas/internal/services/api/reimbursements/service"
)

// Ports defines the reimbursements module ports
type Ports struct {
	Reader rsvc.Service
}

// Module implements the reimbursements module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports Ports

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)
}

// New constructs the reimbursements module. The table is read from
// REIMBURSEMENTS_TABLE under the deps config prefix
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("reimbursements"), modkit.WithPrefix("/reimbursements")}, opts...)...)

	svc := rsvc.New(deps.PG, rrepo.NewPG(deps.Cfg.MayString("REIMBURSEMENTS_TABLE", "reimbursements")))

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		ports:     Ports{Reader: svc},
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		rhttp.Register(r, svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
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

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
