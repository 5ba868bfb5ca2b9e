package http

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	phttp "jarbas/internal/platform/net/http"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

var (
	started = time.Date(2026, 10, 1, 13, 0, 0, 0, time.UTC)
	now     = started.Add(5 * time.Minute)
)

func router(pg any) stdhttp.Handler {
	r := phttp.AdaptChi(chi.NewRouter())
	d := Deps{ServiceName: "jarbas-api", StartedAt: started, PG: pg, now: func() time.Time { return now }}
	RegisterHealth(r, d)
	r.Route("/meta", func(m phttp.Router) { Register(m, d) })
	return r.Mux()
}

func call(t *testing.T, h stdhttp.Handler, target string, data any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, target, nil))
	env := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s: decode %q: %v", target, rec.Body.String(), err)
	}
	if data != nil {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("%s: data %s: %v", target, env.Data, err)
		}
	}
	return rec.Code
}

func TestHealth_RootAndMeta(t *testing.T) {
	h := router(nil)
	for _, target := range []string{"/health", "/meta/health"} {
		var got HealthResponse
		if code := call(t, h, target, &got); code != 200 {
			t.Fatalf("%s: status %d", target, code)
		}
		want := HealthResponse{OK: true, Service: "jarbas-api", Started: "2026-10-01T13:00:00Z", Now: "2026-10-01T13:05:00Z"}
		if got != want {
			t.Fatalf("%s: got %+v", target, got)
		}
	}
}

func TestReady(t *testing.T) {
	cases := []struct {
		name   string
		pg     any
		status int
		state  string
		check  string
	}{
		{"ok", pinger{}, 200, "ok", "ok"},
		{"fail", pinger{err: errors.New("connection refused")}, 503, "fail", "fail"},
		{"skipped", nil, 200, "degraded", "skipped"},
		{"unknown", struct{}{}, 200, "degraded", "unknown"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var got ReadyResponse
			if code := call(t, router(c.pg), "/meta/ready", &got); code != c.status {
				t.Fatalf("status %d", code)
			}
			if got.Status != c.state || len(got.Checks) != 1 || got.Checks[0].Status != c.check {
				t.Fatalf("got %+v", got)
			}
		})
	}
}

func TestService_Uptime(t *testing.T) {
	var got ServiceResponse
	if code := call(t, router(nil), "/meta/service", &got); code != 200 {
		t.Fatalf("status %d", code)
	}
	if got.Uptime != 300 || got.Name != "jarbas-api" || got.Build.Version == "" {
		t.Fatalf("got %+v", got)
	}
}

func TestVersion(t *testing.T) {
	var got map[string]string
	call(t, router(nil), "/meta/version", &got)
	if got["version"] == "" || got["commit"] == "" {
		t.Fatalf("got %v", got)
	}
}
