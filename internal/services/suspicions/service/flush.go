package service

import (
	"context"

	"jarbas/internal/modkit/repokit"
)

// flush writes the queued reimbursements in a single transaction and returns
// total plus the number flushed. The queue is empty afterwards whatever happens
func (s *Service) flush(ctx context.Context, q *queue, total int) (int, error) {
	items := q.drain()
	if len(items) == 0 {
		return total, nil
	}
	err := repokit.WithTx(ctx, s.DB, func(tx repokit.Queryer) error {
		_, err := repokit.MustBind(s.Binder, tx).BulkUpdate(ctx, items)
		return err
	})
	if err != nil {
		return total, err
	}
	return total + len(items), nil
}
