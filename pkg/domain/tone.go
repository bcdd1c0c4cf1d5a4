package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Tone is the requested register of the generated refusal.
type Tone string

const (
	ToneGentle       Tone = "gentle"
	ToneFirm         Tone = "firm"
	TonePlayful      Tone = "playful"
	ToneFormal       Tone = "formal"
	ToneFriendly     Tone = "friendly"
	ToneProfessional Tone = "professional"
)

// DefaultTone is selected when nothing else has been chosen.
const DefaultTone = ToneGentle

// ToneSet is the closed set of tones a deployment accepts.
// The zero value is not usable; build one with NewToneSet or DefaultToneSet.
type ToneSet struct {
	tones []Tone
	def   Tone
}

// DefaultToneSet returns the tones offered by the stock UI.
func DefaultToneSet() ToneSet {
	return ToneSet{
		tones: []Tone{ToneGentle, ToneFirm, TonePlayful, ToneFormal, ToneFriendly, ToneProfessional},
		def:   DefaultTone,
	}
}

// NewToneSet builds a ToneSet from labels. Labels are trimmed, lower-cased and
// de-duplicated; def must be one of them.
func NewToneSet(def string, labels ...string) (ToneSet, error) {
	set := ToneSet{}
	for _, l := range labels {
		t := normalizeTone(l)
		if t == "" || slices.Contains(set.tones, t) {
			continue
		}
		set.tones = append(set.tones, t)
	}
	if len(set.tones) == 0 {
		return ToneSet{}, fmt.Errorf("%w: tone set is empty", ErrInvalidTone)
	}

	set.def = normalizeTone(def)
	if set.def == "" {
		set.def = set.tones[0]
	}
	if !slices.Contains(set.tones, set.def) {
		return ToneSet{}, fmt.Errorf("%w: default %q is not in the set", ErrInvalidTone, def)
	}
	return set, nil
}

// Parse resolves a label to a member of the set.
func (s ToneSet) Parse(label string) (Tone, error) {
	t := normalizeTone(label)
	if t == "" || !slices.Contains(s.tones, t) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTone, label)
	}
	return t, nil
}

// Contains reports whether t belongs to the set.
func (s ToneSet) Contains(t Tone) bool {
	return slices.Contains(s.tones, t)
}

// Default returns the tone used before any selection is made.
func (s ToneSet) Default() Tone {
	return s.def
}

// Tones returns the members in their configured order.
func (s ToneSet) Tones() []Tone {
	return slices.Clone(s.tones)
}

// Strings returns the members as plain labels.
func (s ToneSet) Strings() []string {
	out := make([]string, len(s.tones))
	for i, t := range s.tones {
		out[i] = string(t)
	}
	return out
}

func normalizeTone(label string) Tone {
	return Tone(strings.ToLower(strings.TrimSpace(label)))
}
