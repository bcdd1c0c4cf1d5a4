package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/naas"
	"github.com/aretw0/naas/internal/presentation/tui"
	"github.com/aretw0/naas/pkg/domain"
)

// AskOptions contains all the configuration for the ask command.
type AskOptions struct {
	// Situation is answered once; empty starts the interactive REPL.
	Situation string
	Tone      string
	SessionID string
	// Fresh discards the stored session before resuming it.
	Fresh bool
	JSON  bool
	// Plain skips the banner and markdown rendering, for pipes.
	Plain bool
}

// RunAsk handles the 'ask' command, cancelling on SIGINT or SIGTERM.
func RunAsk(stack *Stack, opts AskOptions, in io.Reader, out io.Writer) error {
	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	err := Ask(sigCtx, stack, opts, in, out)
	if sigCtx.Err() != nil {
		logInterruption(out, sigCtx.Signal())
	}
	return handleExecutionError(err)
}

// Ask answers opts.Situation once or runs the REPL until ctx is done.
func Ask(ctx context.Context, stack *Stack, opts AskOptions, in io.Reader, out io.Writer) error {
	if strings.TrimSpace(opts.Situation) != "" {
		return askOnce(ctx, stack, opts, out)
	}

	theme, err := stack.Themes.Load(ctx)
	if err != nil {
		stack.Logger.Warn("Failed to load theme preference", "err", err)
	}

	engine := stack.Engine(naas.WithDispatcher(NewTerminalDispatcher(out)))
	if opts.Fresh && opts.SessionID != "" {
		if err := engine.Sessions().Delete(ctx, opts.SessionID); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
	}
	s, err := engine.Open(ctx, opts.SessionID)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	if opts.Tone != "" {
		if err := s.SetTone(ctx, opts.Tone); err != nil {
			return err
		}
	}
	stack.Logger.Info("Session active", "session_id", s.ID(), "state", s.Snapshot().State)

	r := &naas.Runner{
		Input:  NewInterruptibleReader(in, ctx.Done()),
		Output: out,
		Meter:  tui.Meter,
		Themes: stack.Themes,
	}
	if !opts.Plain {
		tui.PrintBanner(out, naas.Version)
		r.Renderer = tui.NewRenderer(theme)
	}
	printSystemMessage(out, "Session '%s' active. Type :help for commands.", s.ID())
	return r.Run(ctx, s)
}

func askOnce(ctx context.Context, stack *Stack, opts AskOptions, out io.Writer) error {
	res, err := stack.Engine().Ask(ctx, opts.Situation, opts.Tone)
	if err != nil {
		return err
	}
	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	if opts.Plain {
		return printResult(out, res, nil)
	}
	theme, err := stack.Themes.Load(ctx)
	if err != nil {
		stack.Logger.Warn("Failed to load theme preference", "err", err)
	}
	return printResult(out, res, tui.NewRenderer(theme))
}

func printResult(out io.Writer, res *domain.Result, render naas.ContentRenderer) error {
	text := res.Response
	if render != nil {
		if rendered, err := render(text); err == nil {
			text = strings.TrimRight(rendered, "\n")
		}
	}
	_, err := fmt.Fprintf(out, "%s\n%s\n", text, tui.Meter(res.Score))
	return err
}
