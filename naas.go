package naas

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/naas/internal/logging"
	"github.com/aretw0/naas/pkg/adapters/memory"
	"github.com/aretw0/naas/pkg/domain"
	"github.com/aretw0/naas/pkg/lifecycle"
	"github.com/aretw0/naas/pkg/ports"
	"github.com/aretw0/naas/pkg/session"
)

// Engine is the high-level entry point for generating refusals.
// It owns the relay, the session store and the optional host capabilities,
// and builds one lifecycle controller per session.
type Engine struct {
	relay      ports.Relay
	store      ports.StateStore
	locker     ports.DistributedLocker
	lockTTL    time.Duration
	sessions   *session.Manager
	tones      domain.ToneSet
	logger     *slog.Logger
	timeout    time.Duration
	hooks      []domain.LifecycleHooks
	dispatcher ports.ActionDispatcher
	speaker    ports.Speaker
	recognizer ports.Recognizer
	clipboard  ports.Clipboard
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore persists sessions in store instead of memory.
func WithStore(store ports.StateStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker coordinates sessions across processes.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithLockTTL bounds how long a distributed session lock is held.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.lockTTL = ttl
	}
}

// WithTones sets the accepted tones.
func WithTones(tones domain.ToneSet) Option {
	return func(e *Engine) {
		e.tones = tones
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRelayTimeout bounds each upstream call. Zero disables the limit.
func WithRelayTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithLifecycleHooks observes every controller built by the engine.
func WithLifecycleHooks(hooks ...domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = append(e.hooks, hooks...)
	}
}

// WithDispatcher receives the action requests of every controller.
func WithDispatcher(d ports.ActionDispatcher) Option {
	return func(e *Engine) {
		e.dispatcher = d
	}
}

// WithSpeaker enables reading responses aloud.
func WithSpeaker(s ports.Speaker) Option {
	return func(e *Engine) {
		e.speaker = s
	}
}

// WithRecognizer enables speech input.
func WithRecognizer(r ports.Recognizer) Option {
	return func(e *Engine) {
		e.recognizer = r
	}
}

// WithClipboard enables copying responses.
func WithClipboard(cb ports.Clipboard) Option {
	return func(e *Engine) {
		e.clipboard = cb
	}
}

// New creates an Engine that generates responses through relay.
// A nil relay is allowed; every request then fails as unconfigured.
func New(relay ports.Relay, opts ...Option) *Engine {
	e := &Engine{
		relay:  relay,
		tones:  domain.DefaultToneSet(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		e.store = memory.NewStore()
	}

	managerOpts := []session.Option{session.WithLogger(e.logger)}
	if e.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(e.locker))
	}
	if e.lockTTL > 0 {
		managerOpts = append(managerOpts, session.WithLockTTL(e.lockTTL))
	}
	e.sessions = session.NewManager(e.store, managerOpts...)
	return e
}

// Sessions exposes the session manager.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// Tones returns the accepted tones.
func (e *Engine) Tones() domain.ToneSet {
	return e.tones
}

// AskError is returned by Ask when no response was produced.
// Message is the text a user would see.
type AskError struct {
	Message string
	Err     error
}

func (e *AskError) Error() string {
	return e.Message
}

func (e *AskError) Unwrap() error {
	return e.Err
}

// Ask generates a single refusal for situation without keeping a session.
// An empty tone selects the default.
func (e *Engine) Ask(ctx context.Context, situation, tone string) (*domain.Result, error) {
	c := e.controller("", nil)
	if tone != "" {
		if err := c.SetTone(tone); err != nil {
			return nil, err
		}
	}
	c.SetInput(situation)

	snap, err := c.Submit(ctx)
	if err != nil {
		return nil, &AskError{Message: snap.ErrorMessage, Err: err}
	}
	return snap.Result, nil
}

// Open resumes the session with the given id, creating it when missing.
// An empty id starts a new session with a generated id.
func (e *Engine) Open(ctx context.Context, sessionID string) (*Session, error) {
	var (
		snap *domain.Snapshot
		err  error
	)
	if sessionID == "" {
		snap, err = e.sessions.Create(ctx, e.tones.Default())
	} else {
		snap, err = e.sessions.LoadOrStart(ctx, sessionID, e.tones.Default())
	}
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:      snap.SessionID,
		manager: e.sessions,
		ctrl:    e.controller(snap.SessionID, snap),
	}
	if s.id == "" {
		s.id = sessionID
	}
	return s, nil
}

func (e *Engine) controller(sessionID string, prev *domain.Snapshot) *lifecycle.Controller {
	opts := []lifecycle.Option{
		lifecycle.WithTones(e.tones),
		lifecycle.WithLogger(e.logger),
		lifecycle.WithRelayTimeout(e.timeout),
		lifecycle.WithLifecycleHooks(e.hooks...),
	}
	if sessionID != "" {
		opts = append(opts, lifecycle.WithSessionID(sessionID))
	}
	if prev != nil {
		opts = append(opts, lifecycle.WithSnapshot(prev))
	}
	if e.dispatcher != nil {
		opts = append(opts, lifecycle.WithDispatcher(e.dispatcher))
	}
	if e.speaker != nil {
		opts = append(opts, lifecycle.WithSpeaker(e.speaker))
	}
	if e.recognizer != nil {
		opts = append(opts, lifecycle.WithRecognizer(e.recognizer))
	}
	if e.clipboard != nil {
		opts = append(opts, lifecycle.WithClipboard(e.clipboard))
	}
	return lifecycle.New(e.relay, opts...)
}

// Session is a persisted lifecycle. Every operation saves the resulting
// snapshot, so a session can be resumed by id from another process.
type Session struct {
	id      string
	manager *session.Manager
	ctrl    *lifecycle.Controller
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() *domain.Snapshot {
	return s.ctrl.Snapshot()
}

// Tones returns the accepted tones.
func (s *Session) Tones() domain.ToneSet {
	return s.ctrl.Tones()
}

// SetInput replaces the draft.
func (s *Session) SetInput(ctx context.Context, text string) error {
	s.ctrl.SetInput(text)
	return s.save(ctx)
}

// SetTone changes the selected tone.
func (s *Session) SetTone(ctx context.Context, label string) error {
	if err := s.ctrl.SetTone(label); err != nil {
		return err
	}
	return s.save(ctx)
}

func (s *Session) Submit(ctx context.Context) (*domain.Snapshot, error) {
	return s.do(ctx, s.ctrl.Submit)
}

func (s *Session) Regenerate(ctx context.Context) (*domain.Snapshot, error) {
	return s.do(ctx, s.ctrl.Regenerate)
}

func (s *Session) Retry(ctx context.Context) (*domain.Snapshot, error) {
	return s.do(ctx, s.ctrl.Retry)
}

func (s *Session) Copy(ctx context.Context) (*domain.Snapshot, error) {
	return s.ctrl.Copy(ctx)
}

// Speak blocks until playback ends. Calling it while speaking stops playback.
func (s *Session) Speak(ctx context.Context) (*domain.Snapshot, error) {
	return s.ctrl.Speak(ctx)
}

// Record blocks until a transcript is captured into the draft.
func (s *Session) Record(ctx context.Context) (*domain.Snapshot, error) {
	return s.do(ctx, s.ctrl.Record)
}

func (s *Session) do(ctx context.Context, op func(context.Context) (*domain.Snapshot, error)) (*domain.Snapshot, error) {
	snap, err := op(ctx)
	if saveErr := s.save(ctx); saveErr != nil {
		return snap, errors.Join(err, saveErr)
	}
	return snap, err
}

func (s *Session) save(ctx context.Context) error {
	if err := s.manager.Save(ctx, s.id, s.ctrl.Snapshot()); err != nil {
		return fmt.Errorf("failed to persist session %s: %w", s.id, err)
	}
	return nil
}
