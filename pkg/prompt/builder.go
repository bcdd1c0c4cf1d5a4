// Package prompt turns a user's situation and a tone into the instruction sent
// to the generation API.
package prompt

import (
	"fmt"

	"github.com/aretw0/naas/pkg/domain"
)

const template = `You are a helpful assistant that helps users say "No" politely. Given the context below, generate a warm, tactful, emotionally intelligent response that gracefully says "No" without sounding rude or robotic.

Context:
%[1]s

Tone: %[2]s

Guidelines:
- Sound human, kind, and firm.
- Avoid corporate jargon or AI-sounding phrases.
- Max 2–4 sentences.
- Be empathetic but clear in the refusal.
- Offer alternatives when appropriate.
- Match the requested tone (%[2]s).

Generate only the "No" response, nothing else.`

// Build embeds situation and tone verbatim into the fixed guidance text.
// It is pure: the same inputs always produce the same prompt.
func Build(situation string, tone domain.Tone) string {
	return fmt.Sprintf(template, situation, tone)
}

// Overhead is the number of bytes Build adds around a situation when the
// longest tone of tones is selected.
func Overhead(tones domain.ToneSet) int {
	longest := 0
	for _, t := range tones.Tones() {
		longest = max(longest, len(Build("", t)))
	}
	return longest
}
