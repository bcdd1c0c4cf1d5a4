package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/aretw0/naas"
	"github.com/aretw0/naas/internal/config"
	"github.com/aretw0/naas/pkg/adapters/audio"
	"github.com/aretw0/naas/pkg/adapters/clipboard"
	"github.com/aretw0/naas/pkg/adapters/file"
	"github.com/aretw0/naas/pkg/adapters/gemini"
	"github.com/aretw0/naas/pkg/adapters/gtts"
	httpAdapter "github.com/aretw0/naas/pkg/adapters/http"
	"github.com/aretw0/naas/pkg/adapters/mcp"
	"github.com/aretw0/naas/pkg/adapters/memory"
	"github.com/aretw0/naas/pkg/adapters/redis"
	"github.com/aretw0/naas/pkg/adapters/sqlite"
	"github.com/aretw0/naas/pkg/domain"
	"github.com/aretw0/naas/pkg/observability"
	"github.com/aretw0/naas/pkg/persistence/middleware"
	"github.com/aretw0/naas/pkg/ports"
	"github.com/aretw0/naas/pkg/preferences"
	"github.com/aretw0/naas/pkg/session"
)

// Stack is every adapter a command needs, built once from the configuration.
type Stack struct {
	Config *config.Config
	Logger *slog.Logger

	Relay    ports.Relay
	Store    ports.StateStore
	Prefs    ports.PreferenceStore
	Locker   ports.DistributedLocker
	Sessions *session.Manager
	Themes   *preferences.Themes
	Tones    domain.ToneSet
	Metrics  *observability.Metrics
	Speech   *gtts.Client

	closers []func() error
}

// NewStack wires the relay, the stores and the optional capabilities.
// Close must be called to release connections.
func NewStack(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stack, error) {
	tones, err := cfg.ToneSet()
	if err != nil {
		return nil, err
	}
	s := &Stack{Config: cfg, Logger: logger, Tones: tones}

	if err := s.openStores(); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.wrapStore(); err != nil {
		s.Close()
		return nil, err
	}

	relay, err := newRelay(ctx, cfg, logger)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Relay = relay

	managerOpts := []session.Option{
		session.WithLogger(logger),
		session.WithLockTTL(cfg.Store.LockTTL),
	}
	if s.Locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(s.Locker))
	}
	s.Sessions = session.NewManager(s.Store, managerOpts...)
	s.Themes = preferences.NewThemes(s.Prefs, cfg.Profile)

	if cfg.Metrics.Enabled {
		s.Metrics = observability.NewMetrics()
	}
	s.Speech = gtts.New(cfg.Speech.AccessToken, cfg.Speech.Project, gtts.WithVoice(cfg.Speech.Language, cfg.Speech.Voice))

	logger.Debug("Stack ready", "store", cfg.Store.Backend, "remote", cfg.Relay.Remote != "", "speech", s.Speech.Available())
	return s, nil
}

func (s *Stack) openStores() error {
	cfg := s.Config.Store
	switch cfg.Backend {
	case config.BackendMemory:
		s.Store = memory.NewStore()
		s.Prefs = memory.NewPreferences()
	case config.BackendFile:
		s.Store = file.New(filepath.Join(cfg.Dir, "sessions"))
		s.Prefs = file.NewPreferences(filepath.Join(cfg.Dir, "preferences"))
	case config.BackendRedis:
		client := redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		s.closers = append(s.closers, client.Close)
		s.Store = redis.NewFromClient(client, redis.WithPrefix(cfg.Redis.Prefix), redis.WithTTL(cfg.Redis.TTL))
		s.Prefs = redis.NewPreferences(client, cfg.Redis.Prefix)
		if cfg.Redis.Lock {
			s.Locker = redis.NewLocker(client, cfg.Redis.Prefix)
		}
	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, db.Close)
		s.Store = db.Sessions()
		s.Prefs = db.Preferences()
	default:
		return fmt.Errorf("%w: store backend %q", config.ErrInvalidConfig, cfg.Backend)
	}
	return nil
}

// wrapStore applies redaction before encryption, so masked text is what gets sealed.
func (s *Stack) wrapStore() error {
	var mws []middleware.Middleware
	if s.Config.Store.Redact {
		mws = append(mws, middleware.NewRedactionMiddleware(middleware.DefaultRedactions))
	}
	keys, err := s.Config.EncryptionKeys()
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    keys[0],
			FallbackKeys: keys[1:],
		}))
	}
	s.Store = middleware.Chain(s.Store, mws...)
	return nil
}

func newRelay(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.Relay, error) {
	if cfg.Relay.Remote != "" {
		logger.Debug("Relaying through remote server", "url", cfg.Relay.Remote)
		return httpAdapter.NewRelayClient(cfg.Relay.Remote, &http.Client{}), nil
	}
	client, err := gemini.New(ctx, cfg.GeminiConfig(), gemini.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if !client.Configured() {
		logger.Warn("GEMINI_API_KEY is not set; requests will fail")
	}
	return client, nil
}

// Close releases store connections.
func (s *Stack) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	s.closers = nil
	return errors.Join(errs...)
}

// Speaker plays synthesized speech on the local audio device.
// It returns nil when speech is not configured or no device is available.
func (s *Stack) Speaker() ports.Speaker {
	if !s.Speech.Available() {
		return nil
	}
	player, err := audio.NewPlayer(s.Logger)
	if err != nil {
		s.Logger.Debug("Audio output unavailable", "err", err)
		return nil
	}
	return audio.NewSpeaker(s.Speech, player)
}

// Engine builds the library facade over the stack's relay and store.
func (s *Stack) Engine(opts ...naas.Option) *naas.Engine {
	base := []naas.Option{
		naas.WithStore(s.Store),
		naas.WithTones(s.Tones),
		naas.WithLogger(s.Logger),
		naas.WithRelayTimeout(s.Config.Relay.Timeout),
		naas.WithLockTTL(s.Config.Store.LockTTL),
		naas.WithClipboard(clipboard.New()),
		naas.WithLifecycleHooks(observability.LoggingHooks(s.Logger)),
	}
	if s.Locker != nil {
		base = append(base, naas.WithLocker(s.Locker))
	}
	if sp := s.Speaker(); sp != nil {
		base = append(base, naas.WithSpeaker(sp))
	}
	return naas.New(s.Relay, append(base, opts...)...)
}

// HTTPServer builds the relay endpoint and session API.
func (s *Stack) HTTPServer() *httpAdapter.Server {
	opts := []httpAdapter.Option{
		httpAdapter.WithRelay(s.Relay),
		httpAdapter.WithSessions(s.Sessions),
		httpAdapter.WithPreferences(s.Prefs, s.Config.Profile),
		httpAdapter.WithTones(s.Tones),
		httpAdapter.WithSpeech(s.Speech),
		httpAdapter.WithLogger(s.Logger),
		httpAdapter.WithRelayTimeout(s.Config.Relay.Timeout),
		httpAdapter.WithLifecycleHooks(observability.LoggingHooks(s.Logger)),
	}
	if s.Metrics != nil {
		opts = append(opts, httpAdapter.WithMetrics(s.Metrics))
	}
	return httpAdapter.NewServer(opts...)
}

// MCPServer builds the MCP tool surface.
func (s *Stack) MCPServer() *mcp.Server {
	return mcp.NewServer(s.Relay,
		mcp.WithTones(s.Tones),
		mcp.WithLogger(s.Logger),
		mcp.WithRelayTimeout(s.Config.Relay.Timeout),
		mcp.WithLifecycleHooks(observability.LoggingHooks(s.Logger)),
	)
}
