package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/naas/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for env := range envBindings {
		t.Setenv(env, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "naas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, "gemini-1.5-flash", cfg.Gemini.Model)
	assert.InDelta(t, 0.7, cfg.Gemini.Temperature, 1e-6)
	assert.InDelta(t, 40, cfg.Gemini.TopK, 1e-6)
	assert.InDelta(t, 0.95, cfg.Gemini.TopP, 1e-6)
	assert.EqualValues(t, 200, cfg.Gemini.MaxOutputTokens)
	assert.Equal(t, 30*time.Second, cfg.Relay.Timeout)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, domain.DefaultProfile, cfg.Profile)

	tones, err := cfg.ToneSet()
	require.NoError(t, err)
	assert.Equal(t, domain.ToneGentle, tones.Default())
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  port: 8080
gemini:
  model: gemini-2.0-flash
  temperature: 0.2
  max_output_tokens: 120
relay:
  timeout: 5s
tones:
  default: firm
  labels: [firm, formal]
store:
  backend: redis
  redis:
    addr: redis:6379
    ttl: 24h
    lock: true
log:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	assert.InDelta(t, 0.2, cfg.Gemini.Temperature, 1e-6)
	assert.InDelta(t, 40, cfg.Gemini.TopK, 1e-6, "unset keys keep their default")
	assert.EqualValues(t, 120, cfg.Gemini.MaxOutputTokens)
	assert.Equal(t, 5*time.Second, cfg.Relay.Timeout)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, "naas:", cfg.Store.Redis.Prefix)
	assert.Equal(t, 24*time.Hour, cfg.Store.Redis.TTL)
	assert.True(t, cfg.Store.Redis.Lock)
	assert.Equal(t, "json", cfg.Log.Format)

	tones, err := cfg.ToneSet()
	require.NoError(t, err)
	assert.Equal(t, []string{"firm", "formal"}, tones.Strings())
	assert.Equal(t, domain.ToneFirm, tones.Default())
}

func TestLoad_EnvironmentWins(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "server:\n  port: 8080\ngemini:\n  api_key: from-file\n")
	t.Setenv("PORT", "9090")
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("NAAS_RELAY_TIMEOUT", "1m")
	t.Setenv("NAAS_STORE", "sqlite")
	t.Setenv("NAAS_REDACT", "true")
	t.Setenv("NAAS_TONES", "gentle, playful")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.Gemini.APIKey)
	assert.Equal(t, time.Minute, cfg.Relay.Timeout)
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.True(t, cfg.Store.Redact)

	tones, err := cfg.ToneSet()
	require.NoError(t, err)
	assert.Equal(t, []string{"gentle", "playful"}, tones.Strings())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		want    string
	}{
		{name: "unknown backend", content: "store:\n  backend: mongo\n", want: "store backend"},
		{name: "bad port", env: map[string]string{"PORT": "70000"}, want: "port"},
		{name: "unknown key", content: "sever:\n  port: 1\n", want: "sever"},
		{name: "bad duration", content: "relay:\n  timeout: soon\n", want: "timeout"},
		{name: "default not in tones", content: "tones:\n  default: rude\n", want: "rude"},
		{name: "short encryption key", env: map[string]string{"NAAS_ENCRYPTION_KEYS": base64.StdEncoding.EncodeToString([]byte("short"))}, want: "32 bytes"},
		{name: "malformed yaml", content: "server: [", want: "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.content != "" {
				path = writeConfig(t, tt.content)
			}
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEncryptionKeys(t *testing.T) {
	active := strings.Repeat("a", 32)
	old := strings.Repeat("b", 32)
	cfg := Default()
	cfg.Store.EncryptionKeys = []string{
		base64.StdEncoding.EncodeToString([]byte(active)),
		base64.StdEncoding.EncodeToString([]byte(old)),
	}

	keys, err := cfg.EncryptionKeys()
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, active, string(keys[0]))
	assert.Equal(t, old, string(keys[1]))
}

func TestGeminiConfig(t *testing.T) {
	cfg := Default()
	cfg.Gemini.APIKey = "k"
	g := cfg.GeminiConfig()
	assert.Equal(t, "k", g.APIKey)
	assert.Equal(t, cfg.Gemini.Model, g.Model)
	assert.Equal(t, cfg.Gemini.MaxOutputTokens, g.MaxOutputTokens)
}
