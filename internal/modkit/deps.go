package modkit

import (
	"io"

	"jarbas/internal/modkit/repokit"
	"jarbas/internal/platform/config"
	"jarbas/internal/platform/logger"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner

	// Out is the operator display for progress lines, nil discards them
	Out io.Writer
}

// Display returns Out or io.Discard when unset
func (d Deps) Display() io.Writer {
	if d.Out == nil {
		return io.Discard
	}
	return d.Out
}
