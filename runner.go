package naas

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aretw0/naas/pkg/domain"
)

// ContentRenderer transforms a response before it is written.
// This allows markdown to ANSI rendering without coupling the core package.
type ContentRenderer func(string) (string, error)

// ThemeToggler flips the persisted display theme.
type ThemeToggler interface {
	Toggle(ctx context.Context) (domain.Theme, error)
}

// Runner drives a Session from line-oriented input.
//
// Plain lines become the situation to refuse. Lines starting with ':' are
// commands; "exit" or "quit" ends the loop.
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Renderer ContentRenderer
	// Meter formats the tact score. Nil prints "Tact: N/100".
	Meter func(score int) string
	// Themes backs the :theme command. Nil disables it.
	Themes ThemeToggler

	out      *syncWriter
	speaking sync.WaitGroup
}

// syncWriter serializes writes from the prompt loop and background playback.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}

const replHelp = `Describe what you were asked to do and press Enter.
Commands:
  :regen        new response for the last situation
  :retry        repeat the last request
  :tone [name]  show or change the tone
  :speak        read the response aloud (again to stop)
  :copy         copy the response to the clipboard
  :theme        toggle light/dark
  :help         show this help
  exit, quit    leave`

// Run reads lines until EOF, exit, or ctx is done.
func (r *Runner) Run(ctx context.Context, s *Session) error {
	if r.Input == nil {
		return errors.New("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return errors.New("output writer must be set (use os.Stdout)")
	}
	r.out = &syncWriter{w: r.Output}
	defer r.speaking.Wait()

	scanner := bufio.NewScanner(r.Input)
	for {
		fmt.Fprintf(r.out, "[%s] > ", s.Snapshot().Tone)
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "exit" || line == "quit":
			fmt.Fprintln(r.out, "Bye!")
			return nil
		case strings.HasPrefix(line, ":"):
			r.command(ctx, s, line)
		default:
			if err := s.SetInput(ctx, line); err != nil {
				return err
			}
			r.show(s.Submit(ctx))
		}
	}
}

func (r *Runner) command(ctx context.Context, s *Session, line string) {
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "regen", "regenerate":
		r.show(s.Regenerate(ctx))
	case "retry":
		r.show(s.Retry(ctx))
	case "tone":
		if arg == "" {
			fmt.Fprintf(r.out, "Tone: %s (available: %s)\n", s.Snapshot().Tone, strings.Join(s.Tones().Strings(), ", "))
			return
		}
		if err := s.SetTone(ctx, arg); err != nil {
			fmt.Fprintf(r.out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(r.out, "Tone: %s\n", s.Snapshot().Tone)
	case "speak":
		snap := s.Snapshot()
		if snap.Speaking || snap.Response() == "" || snap.Capabilities.SpeechOutput != domain.Available {
			r.report(s.Speak(ctx))
			return
		}
		r.speaking.Add(1)
		go func() {
			defer r.speaking.Done()
			r.report(s.Speak(ctx))
		}()
	case "copy":
		r.report(s.Copy(ctx))
	case "theme":
		if r.Themes == nil {
			fmt.Fprintln(r.out, "Theme preference is not available.")
			return
		}
		theme, err := r.Themes.Toggle(ctx)
		if err != nil {
			fmt.Fprintf(r.out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(r.out, "Theme: %s\n", theme)
	case "help":
		fmt.Fprintln(r.out, replHelp)
	default:
		fmt.Fprintf(r.out, "Unknown command %q. Type :help for the list.\n", name)
	}
}

// show prints the outcome of a request.
func (r *Runner) show(snap *domain.Snapshot, err error) {
	if err != nil {
		r.report(snap, err)
		return
	}
	if !snap.ResponseVisible() {
		return
	}

	text := snap.Result.Response
	if r.Renderer != nil {
		if rendered, rerr := r.Renderer(text); rerr == nil {
			text = rendered
		}
	}
	fmt.Fprintln(r.out, strings.TrimRight(text, "\n"))
	if r.Meter != nil {
		fmt.Fprintln(r.out, r.Meter(snap.Result.Score))
	} else {
		fmt.Fprintf(r.out, "Tact: %d/100\n", snap.Result.Score)
	}
}

// report prints the user-facing message of a failed operation.
func (r *Runner) report(snap *domain.Snapshot, err error) {
	if err == nil {
		return
	}
	msg := err.Error()
	if snap != nil && snap.ErrorMessage != "" {
		msg = snap.ErrorMessage
	}
	fmt.Fprintf(r.out, "Error: %s\n", msg)
}
