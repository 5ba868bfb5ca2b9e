package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/google/uuid"

	"jarbas/internal/adapters/ingest/dataset"
	"jarbas/internal/core/version"
	"jarbas/internal/modkit"
	"jarbas/internal/modkit/module"
	"jarbas/internal/modkit/repokit"
	"jarbas/internal/platform/config"
	perr "jarbas/internal/platform/errors"
	"jarbas/internal/platform/logger"
	"jarbas/internal/platform/store"

	suspdom "jarbas/internal/services/suspicions/domain"
	suspmod "jarbas/internal/services/suspicions/module"
)

// errUsage means the command line was wrong and usage was printed
var errUsage = errors.New("usage")

// connector opens the store once the command line and dataset are known good
type connector func(ctx context.Context, root config.Conf, l *logger.Logger) (*store.Store, error)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func connect(ctx context.Context, root config.Conf, l *logger.Logger) (*store.Store, error) {
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	st, err := store.Open(ctx, store.Config{
		AppName: "jarbas-suspicions",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		return nil, err
	}
	repokit.MustGuard(ctx, st)
	return st, nil
}

func main() {
	// .env first so LOG_* and SERVICE_* from the file reach the logger and store
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "load .env:", err)
		os.Exit(2)
	}
	// stdout belongs to the progress line
	if os.Getenv("LOG_OUTPUT") == "" {
		mustSetEnv("LOG_OUTPUT", "stderr")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	res, err := run(ctx, os.Args[1:], os.Stdout, connect)
	stop()

	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		ev := logger.Get().Fatal().Err(err).Str("code", perr.CodeOf(err).String())
		if res.RunID != uuid.Nil {
			ev = ev.Str("run_id", res.RunID.String()).Int("updated", res.Updated)
		}
		ev.Msg("suspicions load failed")
	}
}

// run parses args, checks the dataset and only then connects and loads it
func run(ctx context.Context, args []string, stdout io.Writer, open connector) (suspdom.Result, error) {
	fs := flag.NewFlagSet("jarbas-suspicions", flag.ContinueOnError)
	var (
		fBatch   int
		fWorkers int
		fJournal = fs.Bool("journal", true, "record the run in suspicion_runs")
		fVersion = fs.Bool("version", false, "print the build version and exit")
	)
	fs.IntVar(&fBatch, "batch-size", 0, "records per batch (default CORE_SUSPICIONS_BATCH_SIZE or 4096)")
	fs.IntVar(&fBatch, "b", 0, "shorthand for -batch-size")
	fs.IntVar(&fWorkers, "workers", 0, "concurrent lookups per batch (default CORE_SUSPICIONS_WORKERS or 8)")
	fs.IntVar(&fWorkers, "w", 0, "shorthand for -workers")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: %s [-batch-size N] [-workers N] [-journal=false] <dataset>\n", fs.Name())
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return suspdom.Result{}, err
		}
		return suspdom.Result{}, errUsage
	}

	if *fVersion {
		fmt.Fprintln(stdout, "jarbas-suspicions", version.Info())
		return suspdom.Result{}, nil
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return suspdom.Result{}, errUsage
	}
	path := fs.Arg(0)

	// Surface explicit flags to the module, which reads CORE_SUSPICIONS_*
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["batch-size"] || set["b"] {
		if fBatch < 1 {
			return suspdom.Result{}, perr.InvalidArgf("batch size must be at least 1, got %d", fBatch)
		}
		mustSetEnv("CORE_SUSPICIONS_BATCH_SIZE", strconv.Itoa(fBatch))
	}
	if set["workers"] || set["w"] {
		if fWorkers < 1 {
			return suspdom.Result{}, perr.InvalidArgf("workers must be at least 1, got %d", fWorkers)
		}
		mustSetEnv("CORE_SUSPICIONS_WORKERS", strconv.Itoa(fWorkers))
	}
	if set["journal"] {
		mustSetEnv("CORE_SUSPICIONS_JOURNAL", strconv.FormatBool(*fJournal))
	}

	// a missing dataset aborts before the database is touched
	if err := dataset.Check(path); err != nil {
		return suspdom.Result{}, err
	}

	l := logger.Get()
	root := config.New()

	st, err := open(ctx, root, l)
	if err != nil {
		return suspdom.Result{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	sm := suspmod.New(modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		Log: *l,
		Out: stdout,
	})
	module.Register(sm.Name(), sm.Ports())
	sm.EnsureJournal(ctx)

	return module.MustPortsOf[suspdom.RunnerPort](sm).Run(ctx, path)
}
