package lifecycle

import (
	"log/slog"
	"time"

	"github.com/aretw0/naas/pkg/domain"
	"github.com/aretw0/naas/pkg/ports"
)

// Option configures a Controller.
type Option func(*Controller)

// WithTones sets the accepted tones. The set's default is selected initially.
func WithTones(tones domain.ToneSet) Option {
	return func(c *Controller) {
		c.tones = tones
	}
}

// WithDispatcher sets the host that executes side effects.
func WithDispatcher(d ports.ActionDispatcher) Option {
	return func(c *Controller) {
		c.dispatcher = d
	}
}

// WithSpeaker enables reading responses aloud.
func WithSpeaker(s ports.Speaker) Option {
	return func(c *Controller) {
		c.speaker = s
	}
}

// WithRecognizer enables speech input.
func WithRecognizer(r ports.Recognizer) Option {
	return func(c *Controller) {
		c.recognizer = r
	}
}

// WithClipboard enables copying responses.
func WithClipboard(cb ports.Clipboard) Option {
	return func(c *Controller) {
		c.clipboard = cb
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls accumulate.
func WithLifecycleHooks(hooks ...domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = append(c.hooks, hooks...)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithSessionID labels snapshots, events and log lines.
func WithSessionID(id string) Option {
	return func(c *Controller) {
		c.sessionID = id
	}
}

// WithSnapshot resumes from a previously saved snapshot.
func WithSnapshot(snap *domain.Snapshot) Option {
	return func(c *Controller) {
		c.restore = snap.Clone()
	}
}

// WithRelayTimeout bounds every relay call. Zero means no limit.
func WithRelayTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}
