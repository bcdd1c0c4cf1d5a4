package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/naas/pkg/adapters/gtts"
	"github.com/aretw0/naas/pkg/domain"
	"github.com/aretw0/naas/pkg/lifecycle"
	"github.com/aretw0/naas/pkg/observability"
	"github.com/aretw0/naas/pkg/ports"
	"github.com/aretw0/naas/pkg/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const politeNo = "Thank you so much for thinking of me. Unfortunately I can't make it, but I appreciate you asking."

func replyWith(text string) ports.Relay {
	return ports.RelayFunc(func(context.Context, string) (*domain.Payload, error) {
		return domain.TextPayload(text), nil
	})
}

func failWith(err error) ports.Relay {
	return ports.RelayFunc(func(context.Context, string) (*domain.Payload, error) {
		return nil, err
	})
}

func newTestHandler(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	h, err := NewHandler(opts...)
	require.NoError(t, err)
	return h
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var env domain.ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env.Error.Message
}

func TestLoadSpec(t *testing.T) {
	doc, err := LoadSpec()
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/ask"))
	assert.NotNil(t, doc.Paths.Find("/api/sessions/{id}/events"))
}

func TestAsk(t *testing.T) {
	unexpected := errors.New("connection reset")
	upstream := &domain.RelayError{Status: 400, Code: 400, Message: "API key not valid. Please pass a valid API key.", Reason: "INVALID_ARGUMENT"}

	tests := []struct {
		name       string
		relay      ports.Relay
		body       string
		wantStatus int
		wantMsg    string
	}{
		{name: "missing prompt", relay: replyWith(politeNo), body: `{}`, wantStatus: 400, wantMsg: "Prompt is required"},
		{name: "empty prompt", relay: replyWith(politeNo), body: `{"prompt":""}`, wantStatus: 400, wantMsg: "Prompt is required"},
		{name: "no body", relay: replyWith(politeNo), body: "", wantStatus: 400, wantMsg: "Prompt is required"},
		{name: "malformed json", relay: replyWith(politeNo), body: `{"prompt":`, wantStatus: 400, wantMsg: "Invalid request body"},
		{name: "wrong type", relay: replyWith(politeNo), body: `{"prompt":5}`, wantStatus: 400, wantMsg: "Invalid request body"},
		{name: "unconfigured", relay: nil, body: `{"prompt":"hi"}`, wantStatus: 500, wantMsg: "API key is not set"},
		{name: "unconfigured relay error", relay: failWith(domain.ErrRelayUnconfigured), body: `{"prompt":"hi"}`, wantStatus: 500, wantMsg: "API key is not set"},
		{name: "upstream error", relay: failWith(upstream), body: `{"prompt":"hi"}`, wantStatus: 400, wantMsg: upstream.Message},
		{name: "transport failure", relay: failWith(unexpected), body: `{"prompt":"hi"}`, wantStatus: 500, wantMsg: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.relay != nil {
				opts = append(opts, WithRelay(tt.relay))
			}
			w := do(t, newTestHandler(t, opts...), "POST", "/ask", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantMsg, errorMessage(t, w))
		})
	}
}

func TestAsk_UpstreamEnvelopePassthrough(t *testing.T) {
	upstream := &domain.RelayError{Status: 429, Code: 429, Message: "Resource has been exhausted", Reason: "RESOURCE_EXHAUSTED"}
	w := do(t, newTestHandler(t, WithRelay(failWith(upstream))), "POST", "/ask", `{"prompt":"hi"}`)

	assert.Equal(t, 429, w.Code)
	assert.JSONEq(t, `{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`, w.Body.String())
}

func TestAsk_EchoesUpstreamPayload(t *testing.T) {
	raw := `{"candidates":[{"content":{"parts":[{"text":"No."}],"role":"model"}}],"modelVersion":"gemini-1.5-flash"}`
	var gotPrompt string
	relay := ports.RelayFunc(func(_ context.Context, prompt string) (*domain.Payload, error) {
		gotPrompt = prompt
		return domain.DecodePayload([]byte(raw))
	})

	w := do(t, newTestHandler(t, WithRelay(relay)), "POST", "/ask", `{"prompt":"say no\u0007 politely"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, raw, w.Body.String())
	assert.Equal(t, "say no politely", gotPrompt, "control characters are stripped")
}

func TestAsk_RelayTimeout(t *testing.T) {
	relay := ports.RelayFunc(func(ctx context.Context, _ string) (*domain.Payload, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	w := do(t, newTestHandler(t, WithRelay(relay), WithRelayTimeout(10*time.Millisecond)), "POST", "/ask", `{"prompt":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", errorMessage(t, w))
}

func TestHealthAndInfo(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, "GET", "/info", "")
	require.Equal(t, http.StatusOK, w.Code)
	var info map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "naas-http", info["app"])
	assert.Equal(t, "1.0.0", info["api_version"])
	assert.NotEmpty(t, info["version"])
}

func TestDocsAndUI(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")

	w = do(t, h, "GET", "/swagger", "")
	assert.Contains(t, w.Body.String(), "SwaggerUIBundle")

	w = do(t, h, "GET", "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No As A Service")

	w = do(t, h, "GET", "/script.js", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/sessions")
}

func TestCORSPreflight(t *testing.T) {
	w := do(t, newTestHandler(t), "OPTIONS", "/ask", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestTonesAndScore(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/api/tones", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tones":["gentle","firm","playful","formal","friendly","professional"],"default":"gentle"}`, w.Body.String())

	w = do(t, h, "POST", "/api/score", `{"text":"No."}`)
	require.Equal(t, http.StatusOK, w.Code)
	var analysis struct {
		Score int `json:"score"`
		Base  int `json:"base"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &analysis))
	assert.Equal(t, 50, analysis.Base)
	assert.Equal(t, 45, analysis.Score, "\"no\" is blunt")

	w = do(t, h, "POST", "/api/score", `{"text":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Text is required", errorMessage(t, w))

	w = do(t, h, "POST", "/api/score", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestThemePreference(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/api/preferences/theme", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"theme":"light"}`, w.Body.String())

	w = do(t, h, "PUT", "/api/preferences/theme", `{"theme":"dark"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"theme":"dark"}`, w.Body.String())

	w = do(t, h, "POST", "/api/preferences/theme/toggle", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"theme":"light"}`, w.Body.String())

	w = do(t, h, "PUT", "/api/preferences/theme", `{"theme":"blue"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "GET", "/api/preferences/theme", "")
	assert.JSONEq(t, `{"theme":"light"}`, w.Body.String())
}

type fakeSynth struct {
	available bool
	err       error
	calls     atomic.Int32
}

func (f *fakeSynth) Available() bool { return f.available }

func (f *fakeSynth) Synthesize(_ context.Context, text string, enc gtts.Encoding) (*gtts.Audio, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &gtts.Audio{Data: []byte("ID3" + text), ContentType: "audio/mpeg"}, nil
}

func TestSpeech(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		w := do(t, newTestHandler(t), "POST", "/api/speech", `{"text":"No."}`)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, lifecycle.MsgSpeechOutputUnsupported, errorMessage(t, w))
	})

	t.Run("unavailable synthesizer", func(t *testing.T) {
		synth := &fakeSynth{}
		w := do(t, newTestHandler(t, WithSpeech(synth)), "POST", "/api/speech", `{"text":"No."}`)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Zero(t, synth.calls.Load())
	})

	t.Run("audio", func(t *testing.T) {
		w := do(t, newTestHandler(t, WithSpeech(&fakeSynth{available: true})), "POST", "/api/speech", `{"text":"No."}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "audio/mpeg", w.Header().Get("Content-Type"))
		assert.Equal(t, "ID3No.", w.Body.String())
	})

	t.Run("synthesis failure", func(t *testing.T) {
		synth := &fakeSynth{available: true, err: errors.New("quota")}
		w := do(t, newTestHandler(t, WithSpeech(synth)), "POST", "/api/speech", `{"text":"No."}`)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, lifecycle.MsgSpeechOutputFailed, errorMessage(t, w))
	})
}

func TestMetricsEndpoint(t *testing.T) {
	metrics := observability.NewMetrics()
	srv := NewServer(WithRelay(replyWith(politeNo)), WithMetrics(metrics))
	h, err := srv.Handler()
	require.NoError(t, err)

	w := do(t, h, "POST", "/api/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))

	w = do(t, h, "POST", "/api/sessions/"+snap.SessionID+"/submit", `{"input":"help me move"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "naas_transitions_total")
	assert.Contains(t, body, "naas_relay_duration_seconds")
	assert.Contains(t, body, "naas_tact_score")
}

func TestMetricsDisabled(t *testing.T) {
	w := do(t, newTestHandler(t), "GET", "/metrics", "")
	assert.NotContains(t, w.Body.String(), "naas_transitions_total")
}

func TestRelayClient(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ts := httptest.NewServer(newTestHandler(t, WithRelay(replyWith(politeNo))))
		defer ts.Close()

		payload, err := NewRelayClient(ts.URL+"/", nil).Ask(context.Background(), "say no")
		require.NoError(t, err)
		text, err := payload.Text()
		require.NoError(t, err)
		assert.Equal(t, politeNo, text)
	})

	t.Run("largest accepted context", func(t *testing.T) {
		var got string
		relay := ports.RelayFunc(func(_ context.Context, p string) (*domain.Payload, error) {
			got = p
			return domain.TextPayload(politeNo), nil
		})
		ts := httptest.NewServer(newTestHandler(t, WithRelay(relay)))
		defer ts.Close()

		situation := strings.Repeat("b", lifecycle.DefaultMaxInputSize)
		_, err := lifecycle.SanitizeInput(situation)
		require.NoError(t, err)
		built := prompt.Build(situation, domain.ToneProfessional)

		payload, err := NewRelayClient(ts.URL, nil).Ask(context.Background(), built)
		require.NoError(t, err)
		text, err := payload.Text()
		require.NoError(t, err)
		assert.Equal(t, politeNo, text)
		assert.Equal(t, built, got)
	})

	t.Run("prompt beyond the context limit", func(t *testing.T) {
		ts := httptest.NewServer(newTestHandler(t, WithRelay(replyWith(politeNo))))
		defer ts.Close()

		oversized := strings.Repeat("b", lifecycle.DefaultMaxInputSize+prompt.Overhead(domain.DefaultToneSet())+1)
		_, err := NewRelayClient(ts.URL, nil).Ask(context.Background(), oversized)
		var relayErr *domain.RelayError
		require.ErrorAs(t, err, &relayErr)
		assert.Equal(t, http.StatusBadRequest, relayErr.Status)
		assert.Equal(t, "Invalid prompt", relayErr.Message)
	})

	t.Run("upstream error", func(t *testing.T) {
		upstream := &domain.RelayError{Status: 403, Code: 403, Message: "Permission denied", Reason: "PERMISSION_DENIED"}
		ts := httptest.NewServer(newTestHandler(t, WithRelay(failWith(upstream))))
		defer ts.Close()

		_, err := NewRelayClient(ts.URL, nil).Ask(context.Background(), "say no")
		var relayErr *domain.RelayError
		require.ErrorAs(t, err, &relayErr)
		assert.Equal(t, *upstream, *relayErr)
		assert.Equal(t, "Permission denied", lifecycle.Message(err))
	})

	t.Run("unconfigured", func(t *testing.T) {
		ts := httptest.NewServer(newTestHandler(t))
		defer ts.Close()

		_, err := NewRelayClient(ts.URL, nil).Ask(context.Background(), "say no")
		assert.ErrorIs(t, err, domain.ErrRelayUnconfigured)
	})

	t.Run("bare status", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer ts.Close()

		_, err := NewRelayClient(ts.URL, nil).Ask(context.Background(), "say no")
		assert.Equal(t, "API request failed: 503", lifecycle.Message(err))
	})
}

func TestValidationMiddleware_UnknownPathPassesThrough(t *testing.T) {
	doc, err := LoadSpec()
	require.NoError(t, err)
	mw, err := ValidationMiddleware(doc)
	require.NoError(t, err)

	called := false
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	req := httptest.NewRequest("POST", "/not/described", bytes.NewBufferString("anything"))
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, called)
}
