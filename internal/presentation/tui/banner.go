package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the ASCII art banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()
	lines := []struct{ text, color string }{
		{" _ __   __ _  __ _ ___ ", "#818cf8"},
		{"| '_ \\ / _` |/ _` / __|", "#a78bfa"},
		{"| | | | (_| | (_| \\__ \\", "#c084fc"},
		{"|_| |_|\\__,_|\\__,_|___/", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	tagline := "No As A Service"
	if v := strings.TrimSpace(version); v != "" {
		tagline += " v" + v
	}
	fmt.Fprintln(w, p.String(tagline).Faint())
	fmt.Fprintln(w)
}
