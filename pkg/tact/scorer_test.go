package tact_test

import (
	"strings"
	"testing"

	"github.com/aretw0/naas/pkg/tact"
	"github.com/stretchr/testify/assert"
)

func TestScore_Examples(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{
			name: "softened refusal",
			text: "Unfortunately, I can't make it, but perhaps we could reschedule?",
			want: 61, // 50 + 8*2 - 5
		},
		{
			name: "neutral short text",
			text: "Sure.",
			want: 50,
		},
		{
			name: "empty text",
			text: "",
			want: 50,
		},
		{
			name: "blunt refusal",
			text: "No. I won't, I can't, it's impossible, never, absolutely not.",
			want: 20, // 50 - 5*6
		},
		{
			name: "case insensitive",
			text: "THANK YOU, I APPRECIATE IT.",
			want: 66,
		},
		{
			name: "phrases count once",
			text: "maybe maybe maybe maybe",
			want: 58,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tact.Score(tt.text))
		})
	}
}

func TestScore_LengthBonus(t *testing.T) {
	assert.Equal(t, 50, tact.Score(strings.Repeat("a", 100)))
	assert.Equal(t, 60, tact.Score(strings.Repeat("a", 101)))
	assert.Equal(t, 60, tact.Score(strings.Repeat("a", 200)))
	assert.Equal(t, 70, tact.Score(strings.Repeat("a", 201)))
}

func TestScore_LengthCountsCharacters(t *testing.T) {
	// 101 runes but far more bytes.
	assert.Equal(t, 60, tact.Score(strings.Repeat("é", 101)))
	assert.Equal(t, 50, tact.Score(strings.Repeat("é", 60)))

	// An emoji is one rune, where a browser would count two code units.
	assert.Equal(t, 50, tact.Score(strings.Repeat("🙂", 60)))
	assert.Equal(t, 101, tact.Analyze(strings.Repeat("🙂", 101)).Length)
}

func TestScore_Clamped(t *testing.T) {
	all := strings.Join(tact.Softening, " ") + " " + strings.Repeat("x", 250)
	assert.Equal(t, 100, tact.Score(all))

	assert.GreaterOrEqual(t, tact.Score(strings.Join(tact.Bluntness, " ")), 0)
}

func TestScore_Monotonic(t *testing.T) {
	base := "I'd love to help with the move"
	softer := base + ", and I appreciate you asking"
	blunter := base + ", but no"

	assert.Greater(t, tact.Score(softer), tact.Score(base))
	assert.Less(t, tact.Score(blunter), tact.Score(base))
}

func TestScore_SubstringApproximation(t *testing.T) {
	a := tact.Analyze("Nobody told me.")
	assert.Equal(t, []string{"no"}, a.Bluntness)
	assert.Equal(t, 45, a.Score)
}

func TestAnalyze_Breakdown(t *testing.T) {
	text := "Thank you so much for thinking of me. Unfortunately I won't be able to join this time, but maybe next month we could grab coffee instead? I really value our time together."
	a := tact.Analyze(text)

	assert.Equal(t, []string{"thank", "unfortunately", "maybe", "value"}, a.Softening)
	assert.Equal(t, []string{"won't"}, a.Bluntness)
	assert.Equal(t, tact.BaseScore, a.Base)
	assert.Equal(t, 171, a.Length)
	assert.Equal(t, 10, a.LengthBonus)
	assert.Equal(t, 50+32-5+10, a.Score)
}
