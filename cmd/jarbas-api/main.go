package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jarbas/internal/core/version"
	"jarbas/internal/modkit/repokit"
	"jarbas/internal/platform/config"
	"jarbas/internal/platform/logger"
	phttp "jarbas/internal/platform/net/http"
	"jarbas/internal/platform/store"

	"jarbas/internal/services/api"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logger.Get().Fatal().Err(err).Msg("load .env")
	}

	root := config.New()
	apiCfg := root.Prefix("CORE_API_")     // CORE_API_* for http and modules
	pgCfg := root.Prefix("SERVICE_PGSQL_") // SERVICE_PGSQL_* for the store

	l := logger.Get()
	l.Info().Str("version", version.Info().String()).Msg("jarbas-api starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(
		ctx,
		store.Config{
			AppName: "jarbas-api",
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustString("DBURL"),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", false),
			},
		},
		store.WithLogger(*l),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	repokit.MustGuard(ctx, st)
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// reads CORE_API_PORT and the CORE_API_*_TIMEOUT knobs
	srv := phttp.NewServer(root.Prefix("CORE_"))

	api.Mount(
		srv.Router(),
		api.Options{
			Config:         apiCfg,
			Store:          st,
			Logger:         l,
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
		},
	)

	if err := srv.Run(ctx, apiCfg.MayDuration("SHUTDOWN_GRACE", 10*time.Second)); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
