package audio

import (
	"context"
	"fmt"
	"sync"
)

// Synthesizer produces WAV audio for text.
type Synthesizer interface {
	SynthesizeWAV(ctx context.Context, text string) ([]byte, error)
}

// Output plays WAV audio.
type Output interface {
	Play(ctx context.Context, wav []byte) error
	Stop()
}

// Speaker implements ports.Speaker by synthesizing and then playing.
type Speaker struct {
	synth Synthesizer
	out   Output

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewSpeaker combines a synthesizer with a local output.
func NewSpeaker(synth Synthesizer, out Output) *Speaker {
	return &Speaker{synth: synth, out: out}
}

// Available implements ports.Prober; the synthesizer decides when it can probe.
func (s *Speaker) Available() bool {
	if s.synth == nil || s.out == nil {
		return false
	}
	if p, ok := s.synth.(interface{ Available() bool }); ok {
		return p.Available()
	}
	return true
}

// Speak blocks until the utterance ends. Stop or ctx cancellation end it early.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
		cancel()
	}()

	wav, err := s.synth.SynthesizeWAV(ctx, text)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}
	return s.out.Play(ctx, wav)
}

// Stop ends the current utterance, during synthesis or playback.
func (s *Speaker) Stop() error {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.out.Stop()
	return nil
}
