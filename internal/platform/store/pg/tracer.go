package pg

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"jarbas/internal/platform/logger"

	"github.com/rs/zerolog"
)

// maxArgItems caps how many elements of an array argument get logged.
// Bulk statements bind whole batches as arrays
const maxArgItems = 8

// QueryEvent describes one finished statement
type QueryEvent struct {
	SQL       string
	Args      []any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives an event per statement
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer returns a tracer that always prints SQL, independent of the
// process-wide root level; slow statements are logged at warn
func Tracer(root logger.Logger) QueryTracer {
	ll := root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()
	return &zlTracer{log: ll}
}

type zlTracer struct{ log logger.Logger }

func (z *zlTracer) OnQuery(_ context.Context, ev QueryEvent) {
	evt := z.log.Info()
	if ev.Slow {
		evt = z.log.Warn()
	}

	evt.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000.0).
		Bool("slow", ev.Slow).
		Str("sql", compact(ev.SQL)).
		Interface("args", summarizeArgs(ev.Args)).
		Err(ev.Err).
		Msg("pg query")
}

// compact collapses all whitespace runs to single spaces
func compact(s string) string { return strings.Join(strings.Fields(s), " ") }

// summarizeArgs replaces long slice arguments with a short description
func summarizeArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = a
		v := reflect.ValueOf(a)
		if !v.IsValid() || v.Kind() != reflect.Slice || v.Type().Elem().Kind() == reflect.Uint8 {
			continue
		}
		if n := v.Len(); n > maxArgItems {
			out[i] = fmt.Sprintf("%s(len=%d)", v.Type(), n)
		}
	}
	return out
}
