// Package tact implements the keyword heuristic that rates how tactful a
// refusal reads. It is approximate by nature: matching is plain substring
// presence, so "nobody" counts as containing "no".
//
// Length is measured in runes. A browser counts UTF-16 code units instead, so
// text with emoji or other characters outside the Basic Multilingual Plane
// can land on the other side of the 100 and 200 thresholds there.
package tact

import (
	"strings"
	"unicode/utf8"
)

const (
	BaseScore        = 50
	SofteningBonus   = 8
	BluntnessPenalty = 5
	LengthBonus      = 10
	LongThreshold    = 100
	LongerThreshold  = 200
	MinScore         = 0
	MaxScore         = 100
)

// Softening phrases raise the score.
var Softening = []string{
	"appreciate", "understand", "grateful", "thank", "unfortunately", "however",
	"alternative", "perhaps", "maybe", "consider", "respect", "value",
}

// Bluntness phrases lower the score.
var Bluntness = []string{
	"no", "can't", "won't", "impossible", "never", "absolutely not",
}

// Analysis breaks a score into its parts.
type Analysis struct {
	Score       int      `json:"score"`
	Base        int      `json:"base"`
	Softening   []string `json:"softening"`
	Bluntness   []string `json:"bluntness"`
	LengthBonus int      `json:"length_bonus"`
	Length      int      `json:"length"`
}

// Score returns the tact score of text, always within [MinScore, MaxScore].
func Score(text string) int {
	return Analyze(text).Score
}

// Analyze scores text and reports which phrases matched.
// Each phrase counts at most once regardless of how often it occurs.
func Analyze(text string) Analysis {
	lower := strings.ToLower(text)
	a := Analysis{
		Base:      BaseScore,
		Softening: matches(lower, Softening),
		Bluntness: matches(lower, Bluntness),
		Length:    utf8.RuneCountInString(text),
	}

	if a.Length > LongThreshold {
		a.LengthBonus += LengthBonus
	}
	if a.Length > LongerThreshold {
		a.LengthBonus += LengthBonus
	}

	score := a.Base + len(a.Softening)*SofteningBonus - len(a.Bluntness)*BluntnessPenalty + a.LengthBonus
	a.Score = max(MinScore, min(MaxScore, score))
	return a
}

func matches(lower string, phrases []string) []string {
	found := []string{}
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			found = append(found, p)
		}
	}
	return found
}
