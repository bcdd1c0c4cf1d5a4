//go:build noaudio || !(cgo || darwin || windows)

// Package audio plays synthesized speech on the local sound device.
//
// This build has no audio backend: NewPlayer always fails with ErrNoDevice.
package audio

import (
	"context"
	"log/slog"
)

// Player is the playback device. It cannot be constructed in this build.
type Player struct{}

// NewPlayer reports that no audio output exists.
func NewPlayer(*slog.Logger) (*Player, error) {
	return nil, ErrNoDevice
}

// Play always fails with ErrNoDevice.
func (p *Player) Play(context.Context, []byte) error {
	return ErrNoDevice
}

// Stop does nothing.
func (p *Player) Stop() {}
