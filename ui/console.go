package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"cursor-id-reset/identity"
	"cursor-id-reset/log"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Tone selects the colour a console line is printed in.
type Tone int

const (
	TonePlain Tone = iota
	ToneInfo
	ToneWarn
	ToneSuccess
	ToneError
	ToneAccent
)

// Console prints styled status lines and mirrors them, uncoloured, to the log.
type Console struct {
	out    io.Writer
	term   *termenv.Output
	isTTY  bool
	logger *log.Logger
	styles map[Tone]lipgloss.Style
	render *lipgloss.Renderer
}

// NewConsole returns a Console writing to out. Colour is only used when out is
// a terminal that supports it.
func NewConsole(out io.Writer, logger *log.Logger) *Console {
	r := lipgloss.NewRenderer(out)
	c := &Console{
		out:    out,
		term:   termenv.NewOutput(out),
		isTTY:  isTerminal(out),
		logger: logger,
		render: r,
		styles: map[Tone]lipgloss.Style{
			TonePlain:   r.NewStyle(),
			ToneInfo:    r.NewStyle().Foreground(lipgloss.Color("14")),
			ToneWarn:    r.NewStyle().Foreground(lipgloss.Color("11")),
			ToneSuccess: r.NewStyle().Foreground(lipgloss.Color("10")),
			ToneError:   r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			ToneAccent:  r.NewStyle().Foreground(lipgloss.Color("13")),
		},
	}
	return c
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Writer is the underlying output.
func (c *Console) Writer() io.Writer { return c.out }

// IsTerminal reports whether the output is a terminal.
func (c *Console) IsTerminal() bool { return c.isTTY }

// Print writes one line in the given tone. Leading newlines are kept on the
// console and dropped from the log.
func (c *Console) Print(tone Tone, format string, args ...interface{}) {
	text := fmt.Sprintf(format, args...)
	trimmed := strings.TrimLeft(text, "\n")
	if trimmed != "" {
		if tone == ToneError {
			c.logger.Errorf("%s", trimmed)
		} else {
			c.logger.Infof("%s", trimmed)
		}
	}
	lead := text[:len(text)-len(trimmed)]
	fmt.Fprintf(c.out, "%s%s\n", lead, c.renderLines(tone, trimmed))
}

// renderLines styles each line on its own; lipgloss pads multi-line blocks to
// a common width otherwise.
func (c *Console) renderLines(tone Tone, text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = c.styles[tone].Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// Prompt writes text without a trailing newline.
func (c *Console) Prompt(tone Tone, text string) {
	c.logger.Infof("%s", strings.TrimLeft(text, "\n"))
	fmt.Fprint(c.out, c.renderLines(tone, text))
}

func (c *Console) Plain(format string, args ...interface{}) { c.Print(TonePlain, format, args...) }

func (c *Console) Info(format string, args ...interface{}) { c.Print(ToneInfo, format, args...) }

func (c *Console) Warn(format string, args ...interface{}) { c.Print(ToneWarn, format, args...) }

func (c *Console) Success(format string, args ...interface{}) { c.Print(ToneSuccess, format, args...) }

func (c *Console) Error(format string, args ...interface{}) { c.Print(ToneError, format, args...) }

// ClearScreen clears the terminal. It does nothing when the output is not a
// terminal.
func (c *Console) ClearScreen() {
	if c.isTTY {
		c.term.ClearScreen()
	}
}

// ShowSet prints an identifier set under a bracketed title.
func (c *Console) ShowSet(title string, set identity.IdentifierSet) {
	c.Print(ToneInfo, "\n[%s]", title)
	for _, line := range FormatSet(set) {
		c.Print(ToneWarn, "%s", line)
	}
}

// ShowComparison prints the identifiers that change between old and updated.
func (c *Console) ShowComparison(old, updated identity.IdentifierSet) {
	c.Plain("\n=== ID comparison ===")
	oldFields, newFields := old.Fields(), updated.Fields()
	for i := range newFields {
		if oldFields[i].Value == newFields[i].Value {
			c.Print(TonePlain, "%s: unchanged", newFields[i].Label)
			continue
		}
		c.Print(ToneWarn, "%s:", newFields[i].Label)
		c.Print(TonePlain, "%s", indent.String("- "+orNone(oldFields[i].Value)+"\n+ "+newFields[i].Value, 2))
	}
}

// FormatSet returns one "Label: value" line per identifier.
func FormatSet(set identity.IdentifierSet) []string {
	fields := set.Fields()
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, fmt.Sprintf("%s: %s", f.Label, orNone(f.Value)))
	}
	return lines
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// Progress returns a gradient bar showing step of total.
func (c *Console) Progress(step, total, width int) string {
	if total <= 0 {
		return GradientBar(c.render, width, 0, "#22d3ee", "#e879f9")
	}
	return GradientBar(c.render, width, width*step/total, "#22d3ee", "#e879f9")
}
