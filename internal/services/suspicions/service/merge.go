package service

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"jarbas/internal/core/suspicion"
	"jarbas/internal/modkit/repokit"
	"jarbas/internal/services/suspicions/domain"
)

// queue collects the reimbursements of one batch that are ready to flush
type queue struct {
	mu    sync.Mutex
	items []domain.Reimbursement
}

func (q *queue) push(r domain.Reimbursement) {
	q.mu.Lock()
	q.items = append(q.items, r)
	q.mu.Unlock()
}

// drain returns the queued items and leaves the queue empty
func (q *queue) drain() []domain.Reimbursement {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// merge looks up every record of recs with at most Workers lookups in flight and
// queues the matched reimbursements with the new classifier output applied.
// Records without a document id, or whose lookup finds zero or several rows, are
// dropped without a trace. Wait is the batch barrier
func (s *Service) merge(ctx context.Context, recs []suspicion.Record, q *queue) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Cfg.Workers)

	repo := repokit.MustBind(s.Binder, s.DB)
	for _, rec := range recs {
		if rec.DocumentID == 0 {
			continue
		}
		g.Go(func() error {
			r, err := repo.FindByDocumentID(gctx, rec.DocumentID)
			if IsSkip(err) {
				return nil
			}
			if err != nil {
				return err
			}
			r.Apply(rec)
			q.push(r)
			return nil
		})
	}
	return g.Wait()
}
