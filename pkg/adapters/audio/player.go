//go:build !noaudio && (cgo || darwin || windows)

// Package audio plays synthesized speech on the local sound device.
//
// Playback uses oto, which needs cgo and ALSA on Linux. Builds without cgo
// there, or with the noaudio tag, get a Player whose NewPlayer always fails
// with ErrNoDevice.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/naas/internal/logging"
	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process.
var (
	contextOnce sync.Once
	sharedCtx   *oto.Context
	contextErr  error
)

// Player plays WAV/PCM data via oto.
type Player struct {
	ctx    *oto.Context
	logger *slog.Logger
	mu     sync.Mutex
	active *oto.Player // currently playing, nil when idle
}

// NewPlayer initializes the system audio context.
// It returns an error if the audio device is unavailable.
func NewPlayer(logger *slog.Logger) (*Player, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	contextOnce.Do(func() {
		var ready chan struct{}
		sharedCtx, ready, contextErr = oto.NewContext(&oto.NewContextOptions{
			SampleRate:   SampleRate,
			ChannelCount: ChannelCount,
			Format:       oto.FormatSignedInt16LE,
		})
		if contextErr == nil {
			<-ready
		}
	})
	if contextErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoDevice, contextErr)
	}
	logger.Debug("audio player initialized", "rate", SampleRate, "channels", ChannelCount)
	return &Player{ctx: sharedCtx, logger: logger}, nil
}

// Play blocks until the WAV data finished playing, Stop is called or ctx is done.
func (p *Player) Play(ctx context.Context, wav []byte) error {
	pcm, err := extractPCM(wav)
	if err != nil {
		return err
	}

	player := p.ctx.NewPlayer(bytes.NewReader(pcm))
	p.mu.Lock()
	p.active = player
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.active = nil
		p.mu.Unlock()
	}()

	player.Play()
	p.logger.Debug("audio player: playing", "bytes", len(pcm))

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			_ = player.Close()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return player.Close()
}

// Stop interrupts the current playback, if any. Safe to call when idle.
func (p *Player) Stop() {
	p.mu.Lock()
	active := p.active
	p.mu.Unlock()

	if active != nil {
		active.Pause()
		p.logger.Debug("audio player: interrupted")
	}
}
