// Package version reports build metadata stamped in with -ldflags
package version

// BuildInfo holds version information about a jarbas binary
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Set via -ldflags "-X 'jarbas/internal/core/version.version=v0.1.0'
// -X 'jarbas/internal/core/version.commit=abcd' -X 'jarbas/internal/core/version.date=2026-10-01'"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Info returns the build information
func Info() BuildInfo {
	return BuildInfo{Version: version, Commit: commit, Date: date}
}

// String renders the build info on one line for -version flags and startup logs
func (b BuildInfo) String() string {
	return b.Version + " (" + b.Commit + ", " + b.Date + ")"
}
