// Package config loads naas settings from an optional YAML file and the
// environment. Environment variables win over the file; the file wins over
// the defaults.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/naas/pkg/adapters/gemini"
	"github.com/aretw0/naas/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given. A missing file is not an error.
const DefaultPath = "naas.yaml"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

var backends = []string{BackendMemory, BackendFile, BackendRedis, BackendSQLite}

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Gemini  GeminiConfig  `mapstructure:"gemini" yaml:"gemini"`
	Relay   RelayConfig   `mapstructure:"relay" yaml:"relay"`
	Tones   TonesConfig   `mapstructure:"tones" yaml:"tones"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Speech  SpeechConfig  `mapstructure:"speech" yaml:"speech"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Profile keys the persisted preferences.
	Profile string `mapstructure:"profile" yaml:"profile"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" yaml:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type GeminiConfig struct {
	APIKey          string  `mapstructure:"api_key" yaml:"api_key"`
	Model           string  `mapstructure:"model" yaml:"model"`
	Temperature     float32 `mapstructure:"temperature" yaml:"temperature"`
	TopK            float32 `mapstructure:"top_k" yaml:"top_k"`
	TopP            float32 `mapstructure:"top_p" yaml:"top_p"`
	MaxOutputTokens int32   `mapstructure:"max_output_tokens" yaml:"max_output_tokens"`
	BaseURL         string  `mapstructure:"base_url" yaml:"base_url"`
}

type RelayConfig struct {
	// Timeout bounds a single upstream call. Zero disables the limit.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// Remote sends prompts through another naas server's /ask instead of Gemini.
	Remote string `mapstructure:"remote" yaml:"remote"`
}

type TonesConfig struct {
	Default string `mapstructure:"default" yaml:"default"`
	// Labels replaces the stock tone list when set.
	Labels []string `mapstructure:"labels" yaml:"labels"`
}

type StoreConfig struct {
	Backend string        `mapstructure:"backend" yaml:"backend"`
	Dir     string        `mapstructure:"dir" yaml:"dir"`
	Redis   RedisConfig   `mapstructure:"redis" yaml:"redis"`
	SQLite  SQLiteConfig  `mapstructure:"sqlite" yaml:"sqlite"`
	LockTTL time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl"`

	// EncryptionKeys are base64 AES-256 keys. The first encrypts; the rest
	// only decrypt, for rotation.
	EncryptionKeys []string `mapstructure:"encryption_keys" yaml:"encryption_keys"`
	// Redact masks emails and phone numbers in stored contexts.
	Redact bool `mapstructure:"redact" yaml:"redact"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
	// Lock coordinates sessions across server replicas.
	Lock bool `mapstructure:"lock" yaml:"lock"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type SpeechConfig struct {
	AccessToken string `mapstructure:"access_token" yaml:"access_token"`
	Project     string `mapstructure:"project" yaml:"project"`
	Language    string `mapstructure:"language" yaml:"language"`
	Voice       string `mapstructure:"voice" yaml:"voice"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// Default returns the settings of the hosted service.
func Default() *Config {
	g := gemini.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Port:              5001,
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   5 * time.Second,
		},
		Gemini: GeminiConfig{
			Model:           g.Model,
			Temperature:     g.Temperature,
			TopK:            g.TopK,
			TopP:            g.TopP,
			MaxOutputTokens: g.MaxOutputTokens,
		},
		Relay: RelayConfig{Timeout: 30 * time.Second},
		Tones: TonesConfig{Default: string(domain.DefaultTone)},
		Store: StoreConfig{
			Backend: BackendMemory,
			Dir:     ".naas",
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "naas:"},
			SQLite:  SQLiteConfig{Path: ".naas/naas.db"},
			LockTTL: 30 * time.Second,
		},
		Speech:  SpeechConfig{Language: "en-US"},
		Log:     LogConfig{Level: "info", Format: "text"},
		Metrics: MetricsConfig{Enabled: true},
		Profile: domain.DefaultProfile,
	}
}

// envBindings maps environment variables to config keys.
var envBindings = map[string]string{
	"GEMINI_API_KEY":          "gemini.api_key",
	"PORT":                    "server.port",
	"NAAS_MODEL":              "gemini.model",
	"NAAS_GEMINI_BASE_URL":    "gemini.base_url",
	"NAAS_RELAY_TIMEOUT":      "relay.timeout",
	"NAAS_RELAY_REMOTE":       "relay.remote",
	"NAAS_DEFAULT_TONE":       "tones.default",
	"NAAS_TONES":              "tones.labels",
	"NAAS_STORE":              "store.backend",
	"NAAS_STORE_DIR":          "store.dir",
	"NAAS_REDIS_ADDR":         "store.redis.addr",
	"NAAS_REDIS_PASSWORD":     "store.redis.password",
	"NAAS_REDIS_DB":           "store.redis.db",
	"NAAS_REDIS_LOCK":         "store.redis.lock",
	"NAAS_SQLITE_PATH":        "store.sqlite.path",
	"NAAS_ENCRYPTION_KEYS":    "store.encryption_keys",
	"NAAS_REDACT":             "store.redact",
	"GOOGLE_TTS_ACCESS_TOKEN": "speech.access_token",
	"GOOGLE_CLOUD_PROJECT":    "speech.project",
	"NAAS_LOG_LEVEL":          "log.level",
	"NAAS_LOG_FORMAT":         "log.format",
	"NAAS_METRICS":            "metrics.enabled",
	"NAAS_PROFILE":            "profile",
}

// Load reads path (if it exists), then applies environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			var raw map[string]any
			if err := yaml.Unmarshal(data, &raw); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
			if err := decode(raw, cfg); err != nil {
				return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
			}
		}
	}

	if err := decode(environment(os.LookupEnv), cfg); err != nil {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(raw map[string]any, cfg *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

// environment nests the set variables of envBindings into a decodable map.
func environment(lookup func(string) (string, bool)) map[string]any {
	out := map[string]any{}
	for env, key := range envBindings {
		value, ok := lookup(env)
		if !ok || value == "" {
			continue
		}
		parts := strings.Split(key, ".")
		node := out
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[p] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return out
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if !slices.Contains(backends, c.Store.Backend) {
		return fmt.Errorf("%w: store backend %q (valid: %s)", ErrInvalidConfig, c.Store.Backend, strings.Join(backends, ", "))
	}
	if c.Relay.Timeout < 0 {
		return fmt.Errorf("%w: negative relay timeout", ErrInvalidConfig)
	}
	if _, err := c.ToneSet(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := c.EncryptionKeys(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ToneSet builds the accepted tones.
func (c *Config) ToneSet() (domain.ToneSet, error) {
	if len(c.Tones.Labels) == 0 {
		if c.Tones.Default == "" || c.Tones.Default == string(domain.DefaultTone) {
			return domain.DefaultToneSet(), nil
		}
		return domain.NewToneSet(c.Tones.Default, domain.DefaultToneSet().Strings()...)
	}
	return domain.NewToneSet(c.Tones.Default, c.Tones.Labels...)
}

// GeminiConfig converts the settings to the adapter's form.
func (c *Config) GeminiConfig() gemini.Config {
	return gemini.Config{
		APIKey:          c.Gemini.APIKey,
		Model:           c.Gemini.Model,
		Temperature:     c.Gemini.Temperature,
		TopK:            c.Gemini.TopK,
		TopP:            c.Gemini.TopP,
		MaxOutputTokens: c.Gemini.MaxOutputTokens,
		BaseURL:         c.Gemini.BaseURL,
	}
}

// EncryptionKeys decodes the configured keys. Each must be 32 bytes.
func (c *Config) EncryptionKeys() ([][]byte, error) {
	keys := make([][]byte, 0, len(c.Store.EncryptionKeys))
	for i, enc := range c.Store.EncryptionKeys {
		key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(enc))
		if err != nil {
			return nil, fmt.Errorf("encryption key %d: %w", i, err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("encryption key %d: want 32 bytes, got %d", i, len(key))
		}
		keys = append(keys, key)
	}
	return keys, nil
}
