package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var bannerRaw = `  ██████╗██╗   ██╗██████╗ ███████╗ ██████╗ ██████╗
 ██╔════╝██║   ██║██╔══██╗██╔════╝██╔═══██╗██╔══██╗
 ██║     ██║   ██║██████╔╝███████╗██║   ██║██████╔╝
 ██║     ██║   ██║██╔══██╗╚════██║██║   ██║██╔══██╗
 ╚██████╗╚██████╔╝██║  ██║███████║╚██████╔╝██║  ██║
  ╚═════╝ ╚═════╝ ╚═╝  ╚═╝╚══════╝ ╚═════╝ ╚═╝  ╚═╝`

// padLines pads all lines to the widest line's width so lipgloss
// center-alignment shifts every line by the same amount.
func padLines(s string) string {
	lines := strings.Split(s, "\n")
	maxW := 0
	for _, l := range lines {
		if w := runewidth.StringWidth(l); w > maxW {
			maxW = w
		}
	}
	for i, l := range lines {
		if w := runewidth.StringWidth(l); w < maxW {
			lines[i] = l + strings.Repeat(" ", maxW-w)
		}
	}
	return strings.Join(lines, "\n")
}

// Banner returns the start-up banner with the tool version under it.
func (c *Console) Banner(version string) string {
	title := c.styles[ToneWarn].Render(">> Cursor ID reset " + version + " <<")
	return lipgloss.JoinVertical(lipgloss.Center,
		GradientText(c.render, padLines(bannerRaw), "#22d3ee", "#e879f9"),
		"",
		title,
	)
}

// PrintBanner writes the banner followed by a blank line.
func (c *Console) PrintBanner(version string) {
	c.logger.Infof("tool version %s", version)
	c.out.Write([]byte(c.Banner(version) + "\n\n"))
}
