package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/naas/internal/logging"
	"github.com/aretw0/naas/pkg/domain"
	"github.com/aretw0/naas/pkg/ports"
	"github.com/aretw0/naas/pkg/prompt"
	"github.com/aretw0/naas/pkg/tact"
)

// Controller drives the response lifecycle of a single session.
// It is safe for concurrent use.
type Controller struct {
	relay      ports.Relay
	tones      domain.ToneSet
	dispatcher ports.ActionDispatcher
	speaker    ports.Speaker
	recognizer ports.Recognizer
	clipboard  ports.Clipboard
	hooks      []domain.LifecycleHooks
	logger     *slog.Logger
	timeout    time.Duration
	now        func() time.Time
	sessionID  string
	restore    *domain.Snapshot

	mu   sync.Mutex
	snap domain.Snapshot
}

// New creates a Controller that generates responses through relay.
// Optional capabilities are probed once here; an adapter that is nil or
// reports itself unavailable is treated as absent for the controller's lifetime.
func New(relay ports.Relay, opts ...Option) *Controller {
	c := &Controller{
		relay:  relay,
		tones:  domain.DefaultToneSet(),
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.dispatcher == nil {
		c.dispatcher = ports.DispatcherFunc(func(context.Context, domain.ActionRequest) error { return nil })
	}

	caps := domain.Capabilities{
		SpeechInput:  capability(c.recognizer),
		SpeechOutput: capability(c.speaker),
		Clipboard:    capability(c.clipboard),
	}
	if caps.SpeechInput == domain.Unavailable {
		c.recognizer = nil
	}
	if caps.SpeechOutput == domain.Unavailable {
		c.speaker = nil
	}
	if caps.Clipboard == domain.Unavailable {
		c.clipboard = nil
	}

	if c.restore != nil {
		c.snap = *c.restore
		c.restore = nil
		if c.sessionID == "" {
			c.sessionID = c.snap.SessionID
		}
	} else {
		c.snap = *domain.NewSnapshot(c.sessionID, c.tones.Default())
	}
	c.snap.SessionID = c.sessionID
	c.snap.Capabilities = caps
	c.snap.Speaking = false
	c.snap.Recording = false
	if !c.tones.Contains(c.snap.Tone) {
		c.snap.Tone = c.tones.Default()
	}
	// A restored Loading snapshot has no request in flight in this process.
	if c.snap.State == domain.StateLoading {
		c.snap.State = domain.StateError
		c.snap.ErrorMessage = MsgGeneric
		c.snap.Loading = false
		c.snap.SubmitEnabled = true
	}
	if c.sessionID != "" {
		c.logger = c.logger.With("session_id", c.sessionID)
	}
	return c
}

func capability(adapter any) domain.Capability {
	if ports.IsAvailable(adapter) {
		return domain.Available
	}
	return domain.Unavailable
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() *domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap.Clone()
}

// Tones returns the accepted tones.
func (c *Controller) Tones() domain.ToneSet {
	return c.tones
}

// SetInput replaces the editable draft. It never triggers a request.
func (c *Controller) SetInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.Input = text
	c.touch()
}

// SetTone changes the selected tone. Invalid labels leave the selection unchanged.
func (c *Controller) SetTone(label string) error {
	tone, err := c.tones.Parse(label)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.Tone = tone
	c.touch()
	return nil
}

// Submit requests a response for the current input and tone.
// Whitespace-only input is rejected without leaving the current state.
func (c *Controller) Submit(ctx context.Context) (*domain.Snapshot, error) {
	c.mu.Lock()
	attempt := domain.Attempt{Context: strings.TrimSpace(c.snap.Input), Tone: c.snap.Tone}
	c.mu.Unlock()

	if attempt.Context == "" {
		return c.reject(ctx, domain.ErrEmptyContext, MsgEmptyContext)
	}
	return c.run(ctx, domain.TriggerSubmit, attempt)
}

// Regenerate requests a new response for the retained Context/Tone pair,
// ignoring edits to the input or tone made since.
func (c *Controller) Regenerate(ctx context.Context) (*domain.Snapshot, error) {
	c.mu.Lock()
	var attempt *domain.Attempt
	switch {
	case c.snap.Result != nil:
		attempt = &domain.Attempt{Context: c.snap.Result.Context, Tone: c.snap.Result.Tone}
	case c.snap.Attempt != nil:
		a := *c.snap.Attempt
		attempt = &a
	}
	c.mu.Unlock()

	if attempt == nil {
		return c.reject(ctx, domain.ErrNoContext, MsgNoContext)
	}
	return c.run(ctx, domain.TriggerRegenerate, *attempt)
}

// Retry repeats the last attempted request. Without an earlier attempt it
// behaves like Submit.
func (c *Controller) Retry(ctx context.Context) (*domain.Snapshot, error) {
	c.mu.Lock()
	var attempt domain.Attempt
	if c.snap.Attempt != nil {
		attempt = *c.snap.Attempt
	} else {
		attempt = domain.Attempt{Context: strings.TrimSpace(c.snap.Input), Tone: c.snap.Tone}
	}
	c.mu.Unlock()

	if attempt.Context == "" {
		return c.reject(ctx, domain.ErrEmptyContext, MsgEmptyContext)
	}
	return c.run(ctx, domain.TriggerRetry, attempt)
}

func (c *Controller) run(ctx context.Context, trigger domain.Trigger, attempt domain.Attempt) (*domain.Snapshot, error) {
	c.mu.Lock()
	from := c.snap.State
	c.snap.Generation++
	gen := c.snap.Generation
	c.snap.State = domain.StateLoading
	c.snap.Attempt = &attempt
	c.snap.ErrorMessage = ""
	c.snap.Loading = true
	c.snap.SubmitEnabled = false
	c.touch()
	entered := c.snap.Clone()
	c.mu.Unlock()

	c.dispatch(ctx,
		domain.ActionRequest{Type: domain.ActionClearError},
		domain.ActionRequest{Type: domain.ActionShowLoading},
		domain.ActionRequest{Type: domain.ActionSetSubmitEnabled, Payload: false},
	)
	c.emitTransition(ctx, from, trigger, 0, entered)

	relayEvent := &domain.RelayEvent{
		EventBase:  c.event(domain.EventRelayCall),
		Trigger:    trigger,
		Generation: gen,
		Tone:       attempt.Tone,
	}
	c.each(func(h domain.LifecycleHooks) {
		if h.OnRelayCall != nil {
			h.OnRelayCall(ctx, relayEvent)
		}
	})

	text, err := c.ask(ctx, attempt)

	relayEvent = &domain.RelayEvent{
		EventBase:  c.event(domain.EventRelayReturn),
		Trigger:    trigger,
		Generation: gen,
		Tone:       attempt.Tone,
		Duration:   c.now().Sub(relayEvent.Timestamp),
		IsError:    err != nil,
		Err:        err,
	}
	var relayErr *domain.RelayError
	if errors.As(err, &relayErr) {
		relayEvent.Status = relayErr.Status
	}

	c.mu.Lock()
	if gen != c.snap.Generation {
		current := c.snap.Clone()
		c.mu.Unlock()

		relayEvent.Type = domain.EventDiscard
		c.logger.Debug("Discarding stale relay result", "generation", gen, "current", current.Generation)
		c.each(func(h domain.LifecycleHooks) {
			if h.OnDiscard != nil {
				h.OnDiscard(ctx, relayEvent)
			}
		})
		return current, fmt.Errorf("generation %d: %w", gen, domain.ErrSuperseded)
	}

	if err != nil {
		msg := Message(err)
		c.snap.State = domain.StateError
		c.snap.ErrorMessage = msg
		c.snap.Loading = false
		c.snap.SubmitEnabled = true
		c.touch()
		out := c.snap.Clone()
		c.mu.Unlock()

		c.logger.Warn("Relay failed", "generation", gen, "trigger", trigger, "err", err)
		c.returned(ctx, relayEvent)
		c.dispatch(ctx,
			domain.ActionRequest{Type: domain.ActionHideLoading},
			domain.ActionRequest{Type: domain.ActionShowError, Payload: msg},
			domain.ActionRequest{Type: domain.ActionSetSubmitEnabled, Payload: true},
		)
		c.emitTransition(ctx, domain.StateLoading, trigger, 0, out)
		return out, err
	}

	result := &domain.Result{
		Context:  attempt.Context,
		Tone:     attempt.Tone,
		Response: text,
		Score:    tact.Score(text),
	}
	c.snap.State = domain.StateSuccess
	c.snap.Result = result
	c.snap.Loading = false
	c.snap.SubmitEnabled = true
	c.touch()
	out := c.snap.Clone()
	c.mu.Unlock()

	c.returned(ctx, relayEvent)
	c.dispatch(ctx,
		domain.ActionRequest{Type: domain.ActionHideLoading},
		domain.ActionRequest{Type: domain.ActionShowResponse, Payload: *result},
		domain.ActionRequest{Type: domain.ActionUpdateMeter, Payload: result.Score},
		domain.ActionRequest{Type: domain.ActionSetSubmitEnabled, Payload: true},
		domain.ActionRequest{Type: domain.ActionScrollToResult},
	)
	c.emitTransition(ctx, domain.StateLoading, trigger, result.Score, out)
	return out, nil
}

func (c *Controller) ask(ctx context.Context, attempt domain.Attempt) (string, error) {
	if c.relay == nil {
		return "", domain.ErrRelayUnconfigured
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	payload, err := c.relay.Ask(ctx, prompt.Build(attempt.Context, attempt.Tone))
	if err != nil {
		return "", err
	}
	return payload.Text()
}

// Copy writes the retained response to the clipboard. The outcome is a
// notification or an error message; the lifecycle state never changes.
func (c *Controller) Copy(ctx context.Context) (*domain.Snapshot, error) {
	c.mu.Lock()
	text := c.snap.Response()
	cb := c.clipboard
	c.mu.Unlock()

	if text == "" {
		return c.reject(ctx, domain.ErrNoResponse, MsgNoResponseCopy)
	}
	if cb == nil {
		return c.reject(ctx, fmt.Errorf("clipboard: %w", domain.ErrUnsupportedCapability), MsgCopyFailed)
	}
	if err := cb.WriteText(ctx, text); err != nil {
		return c.reject(ctx, fmt.Errorf("clipboard: %w", err), MsgCopyFailed)
	}

	c.dispatch(ctx, domain.ActionRequest{
		Type:    domain.ActionNotify,
		Payload: domain.Notification{Level: domain.NotifySuccess, Message: MsgCopied},
	})
	return c.Snapshot(), nil
}

// Speak reads the retained response aloud and blocks until playback ends.
// Calling Speak while speaking stops playback instead.
func (c *Controller) Speak(ctx context.Context) (*domain.Snapshot, error) {
	c.mu.Lock()
	if c.snap.Speaking {
		c.snap.Speaking = false
		sp := c.speaker
		out := c.snap.Clone()
		c.mu.Unlock()

		if err := sp.Stop(); err != nil {
			c.logger.Warn("Failed to stop speech", "err", err)
		}
		c.dispatch(ctx, domain.ActionRequest{Type: domain.ActionSetSpeaking, Payload: false})
		return out, nil
	}
	text := c.snap.Response()
	sp := c.speaker
	if text == "" || sp == nil {
		c.mu.Unlock()
		if text == "" {
			return c.reject(ctx, domain.ErrNoResponse, MsgNoResponseSpeak)
		}
		return c.reject(ctx, fmt.Errorf("speech output: %w", domain.ErrUnsupportedCapability), MsgSpeechOutputUnsupported)
	}
	c.snap.Speaking = true
	c.mu.Unlock()
	c.dispatch(ctx, domain.ActionRequest{Type: domain.ActionSetSpeaking, Payload: true})

	err := sp.Speak(ctx, text)

	c.mu.Lock()
	wasSpeaking := c.snap.Speaking
	c.snap.Speaking = false
	c.mu.Unlock()
	if wasSpeaking {
		c.dispatch(ctx, domain.ActionRequest{Type: domain.ActionSetSpeaking, Payload: false})
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return c.reject(ctx, fmt.Errorf("speech output: %w", err), MsgSpeechOutputFailed)
	}
	return c.Snapshot(), nil
}

// Record captures one transcript into the input draft and blocks until the
// recognizer finishes. Calling Record while recording stops capture.
func (c *Controller) Record(ctx context.Context) (*domain.Snapshot, error) {
	c.mu.Lock()
	if c.snap.Recording {
		c.snap.Recording = false
		rec := c.recognizer
		out := c.snap.Clone()
		c.mu.Unlock()

		if err := rec.Stop(); err != nil {
			c.logger.Warn("Failed to stop speech recognition", "err", err)
		}
		c.dispatch(ctx, domain.ActionRequest{Type: domain.ActionSetRecording, Payload: false})
		return out, nil
	}
	rec := c.recognizer
	if rec == nil {
		c.mu.Unlock()
		return c.reject(ctx, fmt.Errorf("speech input: %w", domain.ErrUnsupportedCapability), MsgSpeechInputUnsupported)
	}
	c.snap.Recording = true
	c.mu.Unlock()
	c.dispatch(ctx, domain.ActionRequest{Type: domain.ActionSetRecording, Payload: true})

	transcript, err := rec.Listen(ctx)

	c.mu.Lock()
	c.snap.Recording = false
	if err == nil && strings.TrimSpace(transcript) != "" {
		c.snap.Input = transcript
		c.touch()
	}
	c.mu.Unlock()
	c.dispatch(ctx, domain.ActionRequest{Type: domain.ActionSetRecording, Payload: false})

	if err != nil {
		return c.reject(ctx, fmt.Errorf("speech input: %w", err), MsgSpeechInputFailed)
	}
	if strings.TrimSpace(transcript) != "" {
		c.dispatch(ctx, domain.ActionRequest{Type: domain.ActionSetInput, Payload: transcript})
	}
	return c.Snapshot(), nil
}

// reject shows msg without changing the lifecycle state and returns err.
func (c *Controller) reject(ctx context.Context, err error, msg string) (*domain.Snapshot, error) {
	c.mu.Lock()
	c.snap.ErrorMessage = msg
	c.touch()
	out := c.snap.Clone()
	c.mu.Unlock()

	c.logger.Debug("Request rejected", "state", out.State, "err", err)
	c.dispatch(ctx, domain.ActionRequest{Type: domain.ActionShowError, Payload: msg})
	return out, err
}

func (c *Controller) dispatch(ctx context.Context, actions ...domain.ActionRequest) {
	for _, act := range actions {
		if err := c.dispatcher.Dispatch(ctx, act); err != nil {
			c.logger.Warn("Action dispatch failed", "action", act.Type, "err", err)
		}
	}
}

func (c *Controller) emitTransition(ctx context.Context, from domain.LifecycleState, trigger domain.Trigger, score int, snap *domain.Snapshot) {
	e := &domain.TransitionEvent{
		EventBase:  c.event(domain.EventTransition),
		From:       from,
		To:         snap.State,
		Trigger:    trigger,
		Generation: snap.Generation,
		Score:      score,
		Snapshot:   snap,
	}
	c.logger.Debug("Lifecycle transition", "from", from, "to", snap.State, "trigger", trigger, "generation", snap.Generation)
	c.each(func(h domain.LifecycleHooks) {
		if h.OnTransition != nil {
			h.OnTransition(ctx, e)
		}
	})
}

func (c *Controller) returned(ctx context.Context, e *domain.RelayEvent) {
	c.each(func(h domain.LifecycleHooks) {
		if h.OnRelayReturn != nil {
			h.OnRelayReturn(ctx, e)
		}
	})
}

func (c *Controller) each(fn func(domain.LifecycleHooks)) {
	for _, h := range c.hooks {
		fn(h)
	}
}

func (c *Controller) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: c.now(), Type: t, SessionID: c.sessionID}
}

// touch must be called with mu held.
func (c *Controller) touch() {
	c.snap.UpdatedAt = c.now()
}
