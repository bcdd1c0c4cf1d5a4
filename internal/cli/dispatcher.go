package cli

import (
	"context"
	"io"

	"github.com/aretw0/naas/pkg/domain"
	"github.com/muesli/termenv"
)

// TerminalDispatcher renders the transient action requests of a controller:
// the loading indicator, notifications, and speech state. Responses and
// errors are printed by the REPL from the returned snapshot.
type TerminalDispatcher struct {
	out     io.Writer
	profile termenv.Profile
}

// NewTerminalDispatcher writes to out.
func NewTerminalDispatcher(out io.Writer) *TerminalDispatcher {
	return &TerminalDispatcher{out: out, profile: termenv.EnvColorProfile()}
}

func (d *TerminalDispatcher) Dispatch(_ context.Context, req domain.ActionRequest) error {
	switch req.Type {
	case domain.ActionShowLoading:
		return d.line("Thinking...", "", true)
	case domain.ActionNotify:
		n, ok := req.Payload.(domain.Notification)
		if !ok {
			return nil
		}
		if n.Level == domain.NotifyError {
			return d.line("✗ "+n.Message, "#ef4444", false)
		}
		return d.line("✓ "+n.Message, "#22c55e", false)
	case domain.ActionSetSpeaking:
		if speaking, _ := req.Payload.(bool); speaking {
			return d.line("Speaking... (:speak to stop)", "", true)
		}
	case domain.ActionSetRecording:
		if recording, _ := req.Payload.(bool); recording {
			return d.line("Listening...", "", true)
		}
	}
	return nil
}

func (d *TerminalDispatcher) line(text, color string, faint bool) error {
	s := d.profile.String(text)
	if color != "" {
		s = s.Foreground(d.profile.Color(color))
	}
	if faint {
		s = s.Faint()
	}
	_, err := io.WriteString(d.out, s.String()+"\n")
	return err
}
