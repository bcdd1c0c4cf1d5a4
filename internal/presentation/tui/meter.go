package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

const meterCells = 20

// Meter draws the tact score as a horizontal bar, coloured by band.
func Meter(score int) string {
	score = max(0, min(100, score))
	filled := score * meterCells / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", meterCells-filled)

	p := termenv.EnvColorProfile()
	return fmt.Sprintf("Tact %s %d%%", p.String(bar).Foreground(p.Color(meterColor(score))), score)
}

func meterColor(score int) string {
	switch {
	case score >= 70:
		return "#22c55e"
	case score >= 40:
		return "#eab308"
	default:
		return "#ef4444"
	}
}
