package domain

import (
	"slices"
	"time"
)

// LifecycleState is the position of a controller in the response lifecycle.
type LifecycleState string

const (
	StateIdle    LifecycleState = "idle"
	StateLoading LifecycleState = "loading"
	StateSuccess LifecycleState = "success"
	StateError   LifecycleState = "error"
)

// Capability reports whether an optional host facility can be used.
type Capability string

const (
	Available   Capability = "available"
	Unavailable Capability = "unavailable"
)

// Capabilities is detected once when a controller is built.
type Capabilities struct {
	SpeechInput  Capability `json:"speech_input"`
	SpeechOutput Capability `json:"speech_output"`
	Clipboard    Capability `json:"clipboard"`
}

// Attempt is the Context/Tone pair taken at the moment a request was triggered.
type Attempt struct {
	Context string `json:"context"`
	Tone    Tone   `json:"tone"`
}

// Result is the most recent Response together with the pair that produced it.
type Result struct {
	Context  string `json:"context"`
	Tone     Tone   `json:"tone"`
	Response string `json:"response"`
	Score    int    `json:"score"`
}

// Snapshot is the observable state of a lifecycle controller.
//
// Attempt and Result are replaced, never mutated in place, so copies of a
// Snapshot may share them.
type Snapshot struct {
	SessionID string `json:"session_id,omitempty"`

	State LifecycleState `json:"state"`

	// Input is the editable draft; Tone is the current selector value.
	Input string `json:"input"`
	Tone  Tone   `json:"tone"`

	// Attempt is the last triggered request, used by retry.
	Attempt *Attempt `json:"attempt,omitempty"`

	// Result is the last successful response, used by regenerate, copy and speak.
	Result *Result `json:"result,omitempty"`

	ErrorMessage string `json:"error_message,omitempty"`

	// Generation is bumped on every trigger. Relay results from older generations are discarded.
	Generation uint64 `json:"generation"`

	SubmitEnabled bool `json:"submit_enabled"`
	Loading       bool `json:"loading"`
	Speaking      bool `json:"speaking,omitempty"`
	Recording     bool `json:"recording,omitempty"`

	Capabilities Capabilities `json:"capabilities"`
	UpdatedAt    time.Time    `json:"updated_at"`

	// Sealed carries an encrypted copy of the snapshot when a store middleware
	// hides the content. It is empty for plain snapshots.
	Sealed []byte `json:"sealed,omitempty"`
}

// NewSnapshot creates an Idle snapshot with submit enabled.
func NewSnapshot(sessionID string, tone Tone) *Snapshot {
	return &Snapshot{
		SessionID:     sessionID,
		State:         StateIdle,
		Tone:          tone,
		SubmitEnabled: true,
		Capabilities: Capabilities{
			SpeechInput:  Unavailable,
			SpeechOutput: Unavailable,
			Clipboard:    Unavailable,
		},
	}
}

// Clone returns an independent copy.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	out.Sealed = slices.Clone(s.Sealed)
	return &out
}

// ResponseVisible reports whether the response section should be shown.
func (s *Snapshot) ResponseVisible() bool {
	return s.State == StateSuccess && s.Result != nil
}

// Response returns the retained response text, or "".
func (s *Snapshot) Response() string {
	if s.Result == nil {
		return ""
	}
	return s.Result.Response
}
