// Package domain holds the types and ports of the suspicions loader
package domain

import (
	"time"

	"github.com/google/uuid"

	"jarbas/internal/core/suspicion"
)

// Record is one normalized dataset row
type Record = suspicion.Record

// Reimbursement is the stored entity the loader updates.
// Only Probability and Suspicions are ever written back
type Reimbursement struct {
	ID          int64
	DocumentID  int64
	Probability *float64
	Suspicions  map[string]bool
}

// Apply overwrites the classifier output with rec, nil values included
func (r *Reimbursement) Apply(rec Record) {
	r.Probability = rec.Probability
	r.Suspicions = rec.Suspicions
}

// Run statuses recorded in the journal
const (
	RunRunning = "running"
	RunDone    = "done"
	RunError   = "error"
)

// RunStart describes a loader run as it begins
type RunStart struct {
	ID        uuid.UUID
	Dataset   string
	BatchSize int
	Workers   int
	StartedAt time.Time
}

// RunFinish is the outcome of a loader run
type RunFinish struct {
	Status    string
	Batches   int
	Rows      int
	Updated   int
	Bytes     int64
	ElapsedMS int
	ErrText   string
}

// Result summarizes a completed run for the caller
type Result struct {
	RunID   uuid.UUID
	Batches int
	Rows    int
	Updated int
}
