// Package gtts synthesizes speech through the Google Cloud Text-to-Speech REST API.
package gtts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// DefaultEndpoint is the v1 synthesize method.
const DefaultEndpoint = "https://texttospeech.googleapis.com/v1/text:synthesize"

// Environment variables read by NewFromEnv.
const (
	EnvAccessToken = "GOOGLE_TTS_ACCESS_TOKEN"
	EnvProject     = "GOOGLE_CLOUD_PROJECT"
)

// Encoding selects the audio container returned by the API.
type Encoding string

const (
	// MP3 is played by browsers through the /api/speech route.
	MP3 Encoding = "MP3"
	// LINEAR16 is 16-bit PCM in a WAV container, used for local playback.
	LINEAR16 Encoding = "LINEAR16"
)

// SampleRate matches the local audio player.
const SampleRate = 24000

// ErrNotConfigured is returned when credentials are missing.
var ErrNotConfigured = errors.New("text-to-speech is not configured")

// Audio is one synthesized utterance.
type Audio struct {
	Data        []byte
	ContentType string
}

// Client calls the synthesize endpoint.
type Client struct {
	httpClient   *http.Client
	accessToken  string
	projectID    string
	endpoint     string
	languageCode string
	voice        string
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides DefaultEndpoint.
func WithEndpoint(url string) Option {
	return func(c *Client) {
		c.endpoint = url
	}
}

// WithVoice selects the language and voice name.
func WithVoice(languageCode, name string) Option {
	return func(c *Client) {
		c.languageCode = languageCode
		c.voice = name
	}
}

// WithHTTPClient replaces the default client with a 20s timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client. It never fails; Available reports whether credentials were given.
func New(accessToken, projectID string, opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: 20 * time.Second},
		accessToken:  accessToken,
		projectID:    projectID,
		endpoint:     DefaultEndpoint,
		languageCode: "en-US",
		voice:        "en-US-Standard-C",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromEnv reads EnvAccessToken and EnvProject.
func NewFromEnv(opts ...Option) *Client {
	return New(os.Getenv(EnvAccessToken), os.Getenv(EnvProject), opts...)
}

// Available implements ports.Prober.
func (c *Client) Available() bool {
	return c.accessToken != "" && c.projectID != ""
}

// Synthesize converts text to audio in the given encoding.
func (c *Client) Synthesize(ctx context.Context, text string, enc Encoding) (*Audio, error) {
	if !c.Available() {
		return nil, ErrNotConfigured
	}

	audioConfig := map[string]any{"audioEncoding": enc}
	if enc == LINEAR16 {
		audioConfig["sampleRateHertz"] = SampleRate
	}
	body := map[string]any{
		"input": map[string]string{
			"text": text,
		},
		"voice": map[string]string{
			"languageCode": c.languageCode,
			"name":         c.voice,
		},
		"audioConfig": audioConfig,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode tts request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("build tts request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-user-project", c.projectID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("tts http error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("tts non 200: %d, body=%s", resp.StatusCode, string(b))
	}

	var respBody struct {
		AudioContent string `json:"audioContent"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("decode tts response: %w", err)
	}
	if respBody.AudioContent == "" {
		return nil, fmt.Errorf("empty audioContent in tts response")
	}

	data, err := base64.StdEncoding.DecodeString(respBody.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decode base64 audioContent: %w", err)
	}
	return &Audio{Data: data, ContentType: contentType(enc)}, nil
}

// SynthesizeWAV returns LINEAR16 audio for local playback.
func (c *Client) SynthesizeWAV(ctx context.Context, text string) ([]byte, error) {
	audio, err := c.Synthesize(ctx, text, LINEAR16)
	if err != nil {
		return nil, err
	}
	return audio.Data, nil
}

func contentType(enc Encoding) string {
	if enc == LINEAR16 {
		return "audio/wav"
	}
	return "audio/mpeg"
}
