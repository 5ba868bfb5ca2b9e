// Package module defines the minimal contract for a modkit module
package module

import (
	phttp "jarbas/internal/platform/net/http"
)

// Module is the surface every loader or api module exposes.
// It lives apart from modkit so port types can import it without a cycle
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
