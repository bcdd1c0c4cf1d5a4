package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/naas"
	"github.com/aretw0/naas/internal/logging"
	"github.com/aretw0/naas/pkg/adapters/gtts"
	"github.com/aretw0/naas/pkg/adapters/memory"
	"github.com/aretw0/naas/pkg/domain"
	"github.com/aretw0/naas/pkg/observability"
	"github.com/aretw0/naas/pkg/ports"
	"github.com/aretw0/naas/pkg/preferences"
	"github.com/aretw0/naas/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultRelayTimeout bounds a single upstream call made on behalf of a request.
const DefaultRelayTimeout = 30 * time.Second

// SpeechSynthesizer renders text to audio for browsers without speechSynthesis.
type SpeechSynthesizer interface {
	Available() bool
	Synthesize(ctx context.Context, text string, enc gtts.Encoding) (*gtts.Audio, error)
}

// Server serves the relay endpoint, the session API and the embedded UI.
type Server struct {
	relay        ports.Relay
	sessions     *session.Manager
	themes       *preferences.Themes
	tones        domain.ToneSet
	metrics      *observability.Metrics
	speech       SpeechSynthesizer
	logger       *slog.Logger
	relayTimeout time.Duration
	hooks        []domain.LifecycleHooks
	streams      *StreamManager
}

// Option configures a Server.
type Option func(*Server)

// WithRelay sets the upstream used by /ask and by session requests.
// Without one every request fails with "API key is not set".
func WithRelay(relay ports.Relay) Option {
	return func(s *Server) {
		s.relay = relay
	}
}

// WithSessions sets the session manager. Defaults to an in-memory store.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.sessions = m
	}
}

// WithPreferences sets where the theme is persisted.
func WithPreferences(store ports.PreferenceStore, profile string) Option {
	return func(s *Server) {
		s.themes = preferences.NewThemes(store, profile)
	}
}

// WithTones sets the accepted tones.
func WithTones(tones domain.ToneSet) Option {
	return func(s *Server) {
		s.tones = tones
	}
}

// WithMetrics exposes m at /metrics and records every session lifecycle.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithSpeech enables POST /api/speech.
func WithSpeech(synth SpeechSynthesizer) Option {
	return func(s *Server) {
		s.speech = synth
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRelayTimeout bounds each upstream call. Zero disables the limit.
func WithRelayTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.relayTimeout = d
	}
}

// WithLifecycleHooks registers extra hooks on every session controller.
func WithLifecycleHooks(hooks ...domain.LifecycleHooks) Option {
	return func(s *Server) {
		s.hooks = append(s.hooks, hooks...)
	}
}

// NewServer creates a Server with the given options.
func NewServer(opts ...Option) *Server {
	s := &Server{
		tones:        domain.DefaultToneSet(),
		logger:       logging.NewNop(),
		relayTimeout: DefaultRelayTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sessions == nil {
		s.sessions = session.NewManager(memory.NewStore(), session.WithLogger(s.logger))
	}
	if s.themes == nil {
		s.themes = preferences.NewThemes(memory.NewPreferences(), domain.DefaultProfile)
	}
	if s.metrics != nil {
		s.hooks = append(s.hooks, s.metrics.Hooks())
	}
	s.streams = NewStreamManager(s.logger)
	return s
}

// Streams returns the SSE fan-out used for session diffs.
func (s *Server) Streams() *StreamManager {
	return s.streams
}

// Handler builds the router. It fails only if the embedded OpenAPI document is invalid.
func (s *Server) Handler() (http.Handler, error) {
	doc, err := LoadSpec()
	if err != nil {
		return nil, err
	}
	validate, err := ValidationMiddleware(doc)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(validate)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	r.Get("/health", s.getHealth)
	r.Get("/info", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.logger, http.StatusOK, map[string]string{
			"app":         "naas-http",
			"version":     strings.TrimSpace(naas.Version),
			"api_version": doc.Info.Version,
		})
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Post("/ask", s.ask)

	r.Route("/api", func(r chi.Router) {
		r.Get("/tones", s.listTones)
		r.Post("/score", s.scoreText)
		r.Post("/speech", s.synthesize)

		r.Get("/preferences/theme", s.getTheme)
		r.Put("/preferences/theme", s.setTheme)
		r.Post("/preferences/theme/toggle", s.toggleTheme)

		r.Get("/sessions", s.listSessions)
		r.Post("/sessions", s.createSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Put("/input", s.updateInput)
			r.Post("/submit", s.submit)
			r.Post("/regenerate", s.regenerate)
			r.Post("/retry", s.retry)
			r.Get("/events", s.sessionEvents)
		})
	})

	r.Handle("/*", webHandler())

	return enableCORS(r), nil
}

// NewHandler creates a new HTTP handler in one step.
func NewHandler(opts ...Option) (http.Handler, error) {
	return NewServer(opts...).Handler()
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>No As A Service API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// -- Helpers --

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	writeJSON(w, logger, status, domain.ErrorEnvelope{Error: domain.ErrorBody{Message: message}})
}
