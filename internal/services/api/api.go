// Package api provides the read only HTTP API
package api

import (
	"time"

	"jarbas/internal/platform/config"
	"jarbas/internal/platform/logger"
	phttp "jarbas/internal/platform/net/http"
	"jarbas/internal/platform/store"

	"jarbas/internal/modkit"
	"jarbas/internal/modkit/httpkit"
	"jarbas/internal/modkit/module"

	metamod "jarbas/internal/services/api/meta/module"
	reimbmod "jarbas/internal/services/api/reimbursements/module"
)

// Options are the API options
type Options struct {
	// Config is the CORE_API_ view
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableProfiler bool
}

// Mount mounts the API service onto the given router.
// /health sits at the root, everything else under /api/v1
func Mount(r phttp.Router, opt Options) {
	deps := modkit.Deps{
		Cfg: opt.Config,
	}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	meta := metamod.New(deps)
	mods := []module.Module{
		meta,
		reimbmod.New(deps),
	}

	stack := httpkit.CommonStack(httpkit.StackOptions{
		CORSOrigins: opt.Config.MayCSV("CORS_ORIGINS", nil),
		Timeout:     opt.Config.MayDuration("REQUEST_TIMEOUT", 30*time.Second),
		SlowRequest: opt.Config.MayDuration("SLOW_REQUEST", 0),
	})

	r.Group(func(root phttp.Router) {
		root.Use(stack...)
		meta.MountHealth(root)
	})

	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		for _, m := range mods {
			// register each module's ports under its own name for cross-module lookups
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})

	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
}
