package modkit

import (
	"bytes"
	"io"
	"net/http"
	"reflect"
	"testing"

	"jarbas/internal/modkit/httpkit"
	phttp "jarbas/internal/platform/net/http"
)

type stub struct {
	mounted bool
	ports   any
}

func (s *stub) MountRoutes(phttp.Router) { s.mounted = true }
func (s *stub) Ports() any               { return s.ports }
func (s *stub) Name() string             { return "stub" }

var _ Module = (*stub)(nil)

func TestBuilder_ReturnsModule(t *testing.T) {
	t.Parallel()
	var b Builder = func(Deps, ...Option) Module { return &stub{ports: "ok"} }
	m := b(Deps{})
	m.MountRoutes(nil)
	if m.Ports() != "ok" || !m.(*stub).mounted {
		t.Fatalf("unexpected module state %+v", m)
	}
}

func TestDeps_Display(t *testing.T) {
	t.Parallel()
	if (Deps{}).Display() != io.Discard {
		t.Fatal("zero Deps should discard display output")
	}
	var buf bytes.Buffer
	if (Deps{Out: &buf}).Display() != &buf {
		t.Fatal("Display should return Out")
	}
}

func TestBuild_Defaults(t *testing.T) {
	t.Parallel()
	b := Build()
	if b.Name != "" || b.Prefix != "" || b.Ports != nil || len(b.Mw) != 0 {
		t.Fatalf("unexpected defaults %+v", b)
	}
	var r httpkit.Router
	if b.Subrouter(r) != r {
		t.Fatal("default Subrouter should be identity")
	}
	b.Register(r)
}

func TestBuild_WithOptions(t *testing.T) {
	t.Parallel()

	ptr := func(f func(http.Handler) http.Handler) uintptr { return reflect.ValueOf(f).Pointer() }
	mwA := func(next http.Handler) http.Handler { return next }
	mwB := func(next http.Handler) http.Handler { return http.NotFoundHandler() }
	mid := []func(http.Handler) http.Handler{mwA, mwB}

	type ports struct{ N int }
	subs, regs := 0, 0

	b := Build(
		WithName("reimbursements"),
		WithPrefix("/reimbursements"),
		WithMiddlewares(mid...),
		WithPorts(ports{N: 7}),
		WithSubrouter(func(r phttp.Router) phttp.Router { subs++; return r }),
		WithRegister(func(phttp.Router) { regs++ }),
	)

	if b.Name != "reimbursements" || b.Prefix != "/reimbursements" {
		t.Fatalf("name/prefix = %q %q", b.Name, b.Prefix)
	}
	if p, ok := b.Ports.(ports); !ok || p.N != 7 {
		t.Fatalf("ports = %#v", b.Ports)
	}
	if len(b.Mw) != 2 || ptr(b.Mw[0]) != ptr(mwA) || ptr(b.Mw[1]) != ptr(mwB) {
		t.Fatal("middleware order not preserved")
	}
	mid[0] = mwB
	if ptr(b.Mw[0]) != ptr(mwA) {
		t.Fatal("Built.Mw aliases the caller slice")
	}

	b.Subrouter(nil)
	b.Register(nil)
	if subs != 1 || regs != 1 {
		t.Fatalf("hooks called sub=%d reg=%d", subs, regs)
	}
}

func TestWithMiddlewares_Accumulates(t *testing.T) {
	t.Parallel()
	var c buildCfg
	noop := func(next http.Handler) http.Handler { return next }
	WithMiddlewares(noop, noop)(&c)
	WithMiddlewares(noop)(&c)
	if len(c.mw) != 3 {
		t.Fatalf("mw len = %d", len(c.mw))
	}
}
