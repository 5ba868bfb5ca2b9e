// Package module wires the suspicions loader from shared deps
package module

import (
	"context"

	"jarbas/internal/modkit"
	"jarbas/internal/modkit/repokit"
	"jarbas/internal/platform/logger"
	phttp "jarbas/internal/platform/net/http"

	"jarbas/internal/services/suspicions/domain"
	"jarbas/internal/services/suspicions/repo"
	"jarbas/internal/services/suspicions/service"
)

// Ports defines the suspicions module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the suspicions module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New constructs the module from deps.Cfg; it mounts no routes
func New(deps modkit.Deps) *Module {
	return NewWithOptions(deps, FromConfig(deps.Cfg))
}

// NewWithOptions constructs the module from explicit options
func NewWithOptions(deps modkit.Deps, opts Options) *Module {
	db := repokit.WithBeginHooks(deps.PG, repokit.Hooks(repokit.LockTimeout(opts.LockTimeout))...)
	svc := service.New(
		db, repo.NewPG(opts.Table),
		service.OpenDataset,
		deps.Display(),
		service.Config{
			BatchSize: opts.BatchSize,
			Workers:   opts.Workers,
			Journal:   opts.Journal,
		},
	)
	return &Module{deps: deps, opts: opts, ports: Ports{Runner: svc}}
}

// EnsureJournal creates the run journal table when journaling is on.
// A failure is logged and turns journaling off for this process
func (m *Module) EnsureJournal(ctx context.Context) {
	if !m.opts.Journal {
		return
	}
	if err := repo.EnsureJournal(ctx, m.deps.PG); err != nil {
		logger.C(ctx).Warn().Err(err).Msg("suspicions: journal unavailable, runs will not be recorded")
		if svc, ok := m.ports.Runner.(*service.Service); ok {
			svc.Cfg.Journal = false
		}
	}
}

// Options returns the effective options
func (m *Module) Options() Options { return m.opts }

// Name returns the module name
func (m *Module) Name() string { return "suspicions" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op as the loader has no routes
func (m *Module) MountRoutes(phttp.Router) {}
