package repokit

import (
	"context"
	"fmt"
	"time"
)

// BeginHook runs at the start of a transaction with the tx bound Queryer
type BeginHook func(ctx context.Context, q Queryer) error

// WithBeginHooks wraps a TxRunner and runs hooks before fn inside the same tx.
// With no hooks inner is returned as is
func WithBeginHooks(inner TxRunner, hooks ...BeginHook) TxRunner {
	if len(hooks) == 0 {
		return inner
	}
	return hookedTx{TxRunner: inner, hooks: hooks}
}

type hookedTx struct {
	TxRunner
	hooks []BeginHook
}

// Tx starts a tx on the inner runner then runs all hooks before fn
func (h hookedTx) Tx(ctx context.Context, fn func(q Queryer) error) error {
	return h.TxRunner.Tx(ctx, func(q Queryer) error {
		for _, hk := range h.hooks {
			if err := hk(ctx, q); err != nil {
				return err
			}
		}
		return fn(q)
	})
}

// SetLocal returns a hook that sets a transaction scoped server setting.
// It uses set_config so the value travels as a bind parameter
func SetLocal(name, value string) BeginHook {
	return func(ctx context.Context, q Queryer) error {
		if _, err := q.Exec(ctx, `SELECT set_config($1, $2, true)`, name, value); err != nil {
			return fmt.Errorf("set local %s: %w", name, err)
		}
		return nil
	}
}

// LockTimeout returns a SetLocal hook for lock_timeout, or nil when d <= 0
func LockTimeout(d time.Duration) BeginHook {
	if d <= 0 {
		return nil
	}
	return SetLocal("lock_timeout", fmt.Sprintf("%dms", d.Milliseconds()))
}

// Hooks drops nil entries so optional hooks can be listed inline
func Hooks(hs ...BeginHook) []BeginHook {
	out := hs[:0:0]
	for _, h := range hs {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}
