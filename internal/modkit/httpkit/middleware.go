package httpkit

import (
	"net/http"
	"time"

	"jarbas/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack
type StackOptions struct {
	CORSOrigins []string
	Timeout     time.Duration
	SlowRequest time.Duration
}

// CommonStack returns the baseline middleware for the versioned api
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return []func(http.Handler) http.Handler{
		// correlation
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.RequestLogger,

		// safety
		middleware.RecoverJSON,

		// observability
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: o.SlowRequest}),

		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.CORSOrigins}),
		middleware.NoCache(),
		middleware.Compress(),
		middleware.StripSlashes(),
		middleware.Timeout(timeout),
	}
}
