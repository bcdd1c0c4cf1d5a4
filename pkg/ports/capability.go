package ports

import "context"

// Prober is implemented by adapters that can tell whether the host supports them.
// Adapters that do not implement it are assumed available.
type Prober interface {
	Available() bool
}

// Speaker reads text aloud.
// Speak blocks until playback ends, Stop is called, or ctx is done.
type Speaker interface {
	Speak(ctx context.Context, text string) error
	Stop() error
}

// Recognizer captures one finalized transcript per Listen call.
type Recognizer interface {
	Listen(ctx context.Context) (string, error)
	Stop() error
}

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// IsAvailable applies capability detection to an optional adapter.
func IsAvailable(adapter any) bool {
	if adapter == nil {
		return false
	}
	if p, ok := adapter.(Prober); ok {
		return p.Available()
	}
	return true
}
