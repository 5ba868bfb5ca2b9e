package middleware_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	perr "jarbas/internal/platform/errors"
	pnet "jarbas/internal/platform/net"
	"jarbas/internal/platform/net/middleware"
)

func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func TestAccessLog_PassesThrough(t *testing.T) {
	for _, slow := range []time.Duration{0, time.Nanosecond} {
		h := chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, "hi")
			_, _ = io.WriteString(w, "there")
		}), middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: slow}))

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
		if rr.Code != http.StatusCreated || rr.Body.String() != "hithere" {
			t.Fatalf("slow=%v: got %d %q", slow, rr.Code, rr.Body.String())
		}
	}
}

func TestRequestLogger_EchoesID(t *testing.T) {
	var seen string
	h := chain(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = pnet.RequestID(r.Context())
	}), middleware.RequestID(), middleware.RequestLogger)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if seen != "abc-123" || rr.Header().Get("X-Request-ID") != "abc-123" {
		t.Fatalf("seen=%q header=%q", seen, rr.Header().Get("X-Request-ID"))
	}
}

func TestRecoverJSON_WritesEnvelope(t *testing.T) {
	h := chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), middleware.RequestID(), middleware.RecoverJSON)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "rid")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", rr.Code)
	}
	var w pnet.Wire
	if err := json.Unmarshal(rr.Body.Bytes(), &w); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if w.Code != perr.ErrorCodePanic || w.RequestID != "rid" || w.Error != "internal error" {
		t.Fatalf("wire %+v", w)
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: []string{"https://jarbas.example"}}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/reimbursements/1", nil)
	req.Header.Set("Origin", "https://jarbas.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://jarbas.example" {
		t.Fatalf("allow origin %q", got)
	}
}
