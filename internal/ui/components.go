package ui

import (
	"fmt"
	"math"
	"strings"
)

func renderProgressBar(elapsed, total float64, width int) string {
	if width < 10 {
		width = 10
	}
	barWidth := width - 2 // leave some margin

	var ratio float64
	if total > 0 {
		ratio = elapsed / total
	}
	ratio = min(max(ratio, 0), 1)

	filled := int(ratio * float64(barWidth))
	return strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)
}

// renderCentsNeedle draws a ±50 cent gauge with the needle at cents.
func renderCentsNeedle(cents float64, width int) string {
	if width < 11 {
		width = 11
	}
	if width%2 == 0 {
		width--
	}
	half := width / 2
	pos := half + int(math.Round(min(max(cents, -50), 50)/50*float64(half)))

	var sb strings.Builder
	for i := range width {
		switch {
		case i == pos:
			sb.WriteString("●")
		case i == half:
			sb.WriteString("┼")
		default:
			sb.WriteString("─")
		}
	}
	return sb.String()
}

func formatCents(cents float64) string {
	return fmt.Sprintf("%+d¢", int(math.Round(cents)))
}

// inTune reports whether cents is close enough to count as on pitch.
func inTune(cents float64) bool {
	return math.Abs(cents) <= 5
}
