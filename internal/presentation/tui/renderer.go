package tui

import (
	"os"

	"github.com/aretw0/naas/pkg/domain"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const defaultWrap = 80

// NewRenderer returns a function that renders markdown using glamour in the
// style matching theme, wrapped to the terminal width.
// Without color support (NO_COLOR, or output that is not a terminal) it
// uses the plain notty style.
func NewRenderer(theme domain.Theme) func(string) (string, error) {
	profile := termenv.EnvColorProfile()
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(styleFor(theme, profile)),
		glamour.WithColorProfile(profile),
		glamour.WithWordWrap(Width(os.Stdout)),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

func styleFor(theme domain.Theme, profile termenv.Profile) string {
	switch {
	case profile == termenv.Ascii:
		return styles.NoTTYStyle
	case theme == domain.ThemeLight:
		return styles.LightStyle
	default:
		return styles.DarkStyle
	}
}

// Width reports the column count of f, or 80 when f is not a terminal.
func Width(f *os.File) int {
	if !IsTerminal(f) {
		return defaultWrap
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return defaultWrap
	}
	return min(w, 120)
}

// IsTerminal reports whether f is connected to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
