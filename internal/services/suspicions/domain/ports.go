package domain

import (
	"context"
	"io"

	"jarbas/internal/adapters/ingest/dataset"
)

// RunnerPort is the public port exposed by the module
type RunnerPort interface {
	// Run loads the dataset at path and returns the number of reimbursements updated
	Run(ctx context.Context, path string) (Result, error)
}

// StorageRepo is the storage repository interface
type StorageRepo interface {
	// FindByDocumentID returns the single reimbursement with documentID.
	// Errors are NotFound for zero matches and Ambiguous for more than one
	FindByDocumentID(ctx context.Context, documentID int64) (Reimbursement, error)

	// BulkUpdate writes probability and suspicions of rs in one statement
	BulkUpdate(ctx context.Context, rs []Reimbursement) (int, error)

	// StartRun records a run in the journal
	StartRun(ctx context.Context, run RunStart) error

	// FinishRun records the outcome of a run
	FinishRun(ctx context.Context, run RunStart, fin RunFinish) error
}

// RowSource streams dataset rows; io.EOF ends the stream
type RowSource interface {
	Next() (dataset.Row, error)
	Stats() (rows int, bytes int64)
	Close() error
}

// SourceOpener opens the dataset at path, writing the loading line to display
type SourceOpener func(path string, display io.Writer) (RowSource, error)
