// Package clipboard writes responses to the system clipboard.
package clipboard

import (
	"context"

	"github.com/atotto/clipboard"
)

// Swapped in tests.
var (
	writeAll    = clipboard.WriteAll
	unsupported = func() bool { return clipboard.Unsupported }
)

// System implements ports.Clipboard and ports.Prober.
type System struct{}

// New returns the system clipboard adapter.
func New() *System {
	return &System{}
}

// Available reports false when no clipboard utility was found (e.g. headless Linux).
func (System) Available() bool {
	return !unsupported()
}

func (System) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeAll(text)
}
