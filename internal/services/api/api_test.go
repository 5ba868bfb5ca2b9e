package api

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"jarbas/internal/modkit/module"
	"jarbas/internal/platform/config"
	perr "jarbas/internal/platform/errors"
	phttp "jarbas/internal/platform/net/http"
	"jarbas/internal/platform/store"
	reimbmod "jarbas/internal/services/api/reimbursements/module"
)

// emptyPG answers every query with no rows and every ping with ok
type emptyPG struct{}

func (emptyPG) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (emptyPG) Query(context.Context, string, ...any) (store.Rows, error)      { return noRows{}, nil }
func (emptyPG) QueryRow(context.Context, string, ...any) store.Row             { return nil }
func (emptyPG) Tx(_ context.Context, fn func(store.RowQuerier) error) error {
	return fn(emptyPG{})
}
func (emptyPG) Ping(context.Context) error { return nil }

type noRows struct{}

func (noRows) Next() bool        { return false }
func (noRows) Scan(...any) error { return nil }
func (noRows) Err() error        { return nil }
func (noRows) Close()            {}
func (noRows) Columns() []string { return nil }

func mounted(t *testing.T, profiler bool) stdhttp.Handler {
	t.Helper()
	t.Cleanup(module.Reset)
	t.Setenv("CORE_API_CORS_ORIGINS", "https://jarbas.example")

	r := phttp.AdaptChi(chi.NewRouter())
	Mount(r, Options{
		Config:         config.New().Prefix("CORE_API_"),
		Store:          &store.Store{PG: emptyPG{}},
		EnableProfiler: profiler,
	})
	return r.Mux()
}

func do(h stdhttp.Handler, target string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(stdhttp.MethodGet, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMount_Routes(t *testing.T) {
	h := mounted(t, false)

	cases := []struct {
		target string
		status int
		code   perr.ErrorCode
	}{
		{"/health", 200, 0},
		{"/api/v1/meta/health", 200, 0},
		{"/api/v1/meta/ready", 200, 0},
		{"/api/v1/meta/version", 200, 0},
		{"/api/v1/reimbursements/42", 404, perr.ErrorCodeNotFound},
		{"/api/v1/reimbursements/42/", 404, perr.ErrorCodeNotFound},
		{"/api/v1/reimbursements/forty-two", 422, perr.ErrorCodeInvalidArgument},
		{"/api/v1/nope", 404, perr.ErrorCodeNotFound},
		{"/debug/pprof/", 404, perr.ErrorCodeNotFound},
	}
	for _, c := range cases {
		rec := do(h, c.target, nil)
		if rec.Code != c.status {
			t.Fatalf("%s: status %d body %s", c.target, rec.Code, rec.Body.String())
		}
		var env phttp.Envelope
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s: decode: %v", c.target, err)
		}
		if env.Code != c.code || env.StatusCode != c.status {
			t.Fatalf("%s: envelope %+v", c.target, env)
		}
	}
}

func TestMount_RequestIDAndCORS(t *testing.T) {
	h := mounted(t, false)
	rec := do(h, "/api/v1/meta/health", map[string]string{
		"Origin":       "https://jarbas.example",
		"X-Request-Id": "req-123",
	})
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://jarbas.example" {
		t.Fatalf("allow origin %q", got)
	}
	var env phttp.Envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	if env.RequestID != "req-123" {
		t.Fatalf("request id %q", env.RequestID)
	}

	rec = do(h, "/api/v1/meta/health", map[string]string{"Origin": "https://elsewhere.example"})
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("foreign origin allowed: %q", got)
	}
}

func TestMount_RegistersPorts(t *testing.T) {
	mounted(t, false)
	p, ok := module.PortsAs[reimbmod.Ports]("reimbursements")
	if !ok || p.Reader == nil {
		t.Fatal("reimbursements ports not registered")
	}
}

func TestMount_Profiler(t *testing.T) {
	h := mounted(t, true)
	if rec := do(h, "/debug/pprof/", nil); rec.Code != 200 {
		t.Fatalf("pprof status %d", rec.Code)
	}
}
