package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// parseHex converts "#RRGGBB" to (r, g, b) uint8 values.
func parseHex(hex string) (uint8, uint8, uint8) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0
	}
	var r, g, b uint8
	fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b)
	return r, g, b
}

// lerpByte linearly interpolates between two bytes.
func lerpByte(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

// lerpHex returns the colour t of the way from start to end.
func lerpHex(start, end string, t float64) lipgloss.Color {
	r1, g1, b1 := parseHex(start)
	r2, g2, b2 := parseHex(end)
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", lerpByte(r1, r2, t), lerpByte(g1, g2, t), lerpByte(b1, b2, t)))
}

// GradientText renders text with a left-to-right gradient from startHex to
// endHex. Newlines are preserved. The renderer decides how much colour, if
// any, reaches the output.
func GradientText(r *lipgloss.Renderer, text, startHex, endHex string) string {
	if text == "" {
		return ""
	}

	runes := []rune(text)
	visible := 0
	for _, c := range runes {
		if c != '\n' {
			visible++
		}
	}
	if visible == 0 {
		return text
	}

	var sb strings.Builder
	idx := 0
	for _, c := range runes {
		if c == '\n' {
			sb.WriteRune('\n')
			continue
		}
		t := 0.0
		if visible > 1 {
			t = float64(idx) / float64(visible-1)
		}
		sb.WriteString(r.NewStyle().Foreground(lerpHex(startHex, endHex, t)).Render(string(c)))
		idx++
	}
	return sb.String()
}

// GradientBar renders a progress bar of `width` characters with `filled` filled blocks.
// Filled portion uses a gradient from startHex to endHex; unfilled uses dim blocks.
func GradientBar(r *lipgloss.Renderer, width, filled int, startHex, endHex string) string {
	if width <= 0 {
		return ""
	}
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	var sb strings.Builder
	for i := 0; i < filled; i++ {
		t := 0.0
		if filled > 1 {
			t = float64(i) / float64(filled-1)
		}
		sb.WriteString(r.NewStyle().Foreground(lerpHex(startHex, endHex, t)).Render("█"))
	}
	if filled < width {
		sb.WriteString(r.NewStyle().Foreground(lipgloss.Color("#3c3c3c")).Render(strings.Repeat("░", width-filled)))
	}
	return sb.String()
}
