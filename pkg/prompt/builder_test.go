package prompt_test

import (
	"strings"
	"testing"

	"github.com/aretw0/naas/pkg/domain"
	"github.com/aretw0/naas/pkg/prompt"
	"github.com/stretchr/testify/assert"
)

func TestBuild_Deterministic(t *testing.T) {
	a := prompt.Build("My cousin wants to borrow my car for a week.", domain.ToneFirm)
	b := prompt.Build("My cousin wants to borrow my car for a week.", domain.ToneFirm)
	assert.Equal(t, a, b)
}

func TestBuild_EmbedsInputsVerbatim(t *testing.T) {
	situation := "Boss asks me to work\nthis Saturday (again) 100% unpaid {{.x}}"
	p := prompt.Build(situation, domain.TonePlayful)

	assert.Contains(t, p, "Context:\n"+situation+"\n\nTone: playful")
	assert.Contains(t, p, "- Match the requested tone (playful).")
	assert.True(t, strings.HasPrefix(p, `You are a helpful assistant that helps users say "No" politely.`))
	assert.True(t, strings.HasSuffix(p, `Generate only the "No" response, nothing else.`))
}

func TestBuild_GuidanceIsFixed(t *testing.T) {
	p1 := prompt.Build("a", domain.ToneGentle)
	p2 := prompt.Build("b", domain.ToneGentle)

	strip := func(s, situation string) string {
		return strings.Replace(s, "Context:\n"+situation+"\n", "", 1)
	}
	assert.Equal(t, strip(p1, "a"), strip(p2, "b"))
	assert.Contains(t, p1, "- Max 2–4 sentences.")
}

func TestOverhead(t *testing.T) {
	tones := domain.DefaultToneSet()
	overhead := prompt.Overhead(tones)
	situation := strings.Repeat("x", 100)

	for _, tone := range tones.Tones() {
		assert.LessOrEqual(t, len(prompt.Build(situation, tone)), len(situation)+overhead, tone)
	}
	assert.Equal(t, len(situation)+overhead, len(prompt.Build(situation, domain.ToneProfessional)))
}
