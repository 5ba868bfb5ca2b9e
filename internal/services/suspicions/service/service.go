// Package service runs the suspicions loader: decode, normalize, batch, merge, flush, report
package service

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"jarbas/internal/adapters/ingest/dataset"
	"jarbas/internal/core/batch"
	"jarbas/internal/core/suspicion"
	"jarbas/internal/modkit/repokit"
	perr "jarbas/internal/platform/errors"
	"jarbas/internal/platform/logger"
	"jarbas/internal/services/suspicions/domain"
)

// DefaultWorkers bounds concurrent lookups within one batch
const DefaultWorkers = 8

// Config holds the loader knobs
type Config struct {
	BatchSize int  // records per batch; must be >= 1
	Workers   int  // concurrent lookups per batch; must be >= 1
	Journal   bool // record runs in suspicion_runs
}

// Service implements domain.RunnerPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.StorageRepo]
	Open   domain.SourceOpener
	Out    io.Writer
	Cfg    Config

	now func() time.Time
}

// OpenDataset is the default SourceOpener, backed by the compressed CSV reader
func OpenDataset(path string, display io.Writer) (domain.RowSource, error) {
	return dataset.Open(path, display)
}

// New constructs the loader. open defaults to OpenDataset, out to io.Discard
func New(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo], open domain.SourceOpener, out io.Writer, cfg Config) *Service {
	if db == nil {
		panic("suspicions.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("suspicions.Service requires a non nil Repo binder")
	}
	if open == nil {
		open = OpenDataset
	}
	if out == nil {
		out = io.Discard
	}
	return &Service{DB: db, Binder: binder, Open: open, Out: out, Cfg: cfg, now: time.Now}
}

// Run loads the dataset at path into the reimbursements table
func (s *Service) Run(ctx context.Context, path string) (domain.Result, error) {
	if s.Cfg.BatchSize < 1 {
		return domain.Result{}, perr.InvalidArgf("batch size must be at least 1, got %d", s.Cfg.BatchSize)
	}
	if s.Cfg.Workers < 1 {
		return domain.Result{}, perr.InvalidArgf("workers must be at least 1, got %d", s.Cfg.Workers)
	}

	src, err := s.Open(path, s.Out)
	if err != nil {
		return domain.Result{}, err
	}
	defer func() { _ = src.Close() }()

	abs, aerr := filepath.Abs(path)
	if aerr != nil {
		abs = path
	}
	run := domain.RunStart{
		ID:        uuid.New(),
		Dataset:   abs,
		BatchSize: s.Cfg.BatchSize,
		Workers:   s.Cfg.Workers,
		StartedAt: s.now(),
	}
	ctx = logger.WithRun(ctx, run.ID.String())
	log := logger.C(ctx)
	log.Info().
		Str("dataset", abs).
		Int("batch_size", run.BatchSize).
		Int("workers", run.Workers).
		Msg("suspicions: run started")

	j := s.journal(ctx, run)

	var (
		total   int
		batches int
		q       = &queue{}
		report  = newProgress(s.Out)
	)
	next := func() (suspicion.Record, error) {
		row, err := src.Next()
		if err != nil {
			return suspicion.Record{}, err
		}
		return suspicion.Normalize(row)
	}
	err = batch.Of(next, s.Cfg.BatchSize, func(recs []suspicion.Record) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.merge(ctx, recs, q); err != nil {
			q.drain()
			return err
		}
		var ferr error
		total, ferr = s.flush(ctx, q, total)
		if ferr != nil {
			return ferr
		}
		batches++
		report.update(total)
		log.Debug().Int("batch", batches).Int("records", len(recs)).Int("total", total).Msg("suspicions: batch flushed")
		return nil
	})
	if err == nil {
		report.done(total)
	}

	rows, bytes := src.Stats()
	res := domain.Result{RunID: run.ID, Batches: batches, Rows: rows, Updated: total}
	fin := domain.RunFinish{
		Status:    domain.RunDone,
		Batches:   batches,
		Rows:      rows,
		Updated:   total,
		Bytes:     bytes,
		ElapsedMS: int(s.now().Sub(run.StartedAt).Milliseconds()),
	}
	if err != nil {
		fin.Status = domain.RunError
		fin.ErrText = err.Error()
	}
	j.finish(ctx, fin)

	if err != nil {
		log.Error().Err(err).Int("updated", total).Msg("suspicions: run failed")
		return res, err
	}
	log.Info().
		Int("rows", rows).
		Int("batches", batches).
		Int("updated", total).
		Str("read", humanize.Bytes(uint64(bytes))).
		Msg("suspicions: run done")
	return res, nil
}

// journal records run start and finish; failures only warn
type journal struct {
	s   *Service
	run domain.RunStart
	on  bool
}

func (s *Service) journal(ctx context.Context, run domain.RunStart) *journal {
	j := &journal{s: s, run: run, on: s.Cfg.Journal}
	if !j.on {
		return j
	}
	if err := s.Binder.Bind(s.DB).StartRun(ctx, run); err != nil {
		j.warn(ctx, err, "start")
		j.on = false
	}
	return j
}

func (j *journal) finish(ctx context.Context, fin domain.RunFinish) {
	if !j.on {
		return
	}
	// the run context may already be cancelled; the journal row should still close
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := j.s.Binder.Bind(j.s.DB).FinishRun(fctx, j.run, fin); err != nil {
		j.warn(ctx, err, "finish")
	}
}

func (j *journal) warn(ctx context.Context, err error, step string) {
	evt := logger.C(ctx).Warn().Err(err).Str("step", step)
	if perr.IsUndefinedTable(err) {
		evt = evt.Str("hint", "create suspicion_runs or set CORE_SUSPICIONS_JOURNAL=false")
	}
	evt.Msg("suspicions: journal write failed")
}

// IsSkip reports whether a lookup error means the record is silently ignored
func IsSkip(err error) bool {
	return perr.IsNotFound(err) || perr.IsAmbiguous(err)
}
