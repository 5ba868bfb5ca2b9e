package module

import (
	"time"

	"jarbas/internal/core/batch"
	"jarbas/internal/platform/config"
	"jarbas/internal/services/suspicions/repo"
	"jarbas/internal/services/suspicions/service"
)

// Options holds configuration for the suspicions loader
type Options struct {
	BatchSize   int
	Workers     int
	Journal     bool
	Table       string
	LockTimeout time.Duration
}

// FromConfig reads the loader options with the CORE_SUSPICIONS_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_SUSPICIONS_")
	return Options{
		BatchSize:   c.MayPositiveInt("BATCH_SIZE", batch.DefaultSize),
		Workers:     c.MayPositiveInt("WORKERS", service.DefaultWorkers),
		Journal:     c.MayBool("JOURNAL", true),
		Table:       c.MayString("TABLE", repo.DefaultTable),
		LockTimeout: c.MayDuration("LOCK_TIMEOUT", 0),
	}
}
