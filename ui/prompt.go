package ui

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// Prompter asks yes/no questions on the console.
type Prompter struct {
	in      *bufio.Reader
	console *Console
	autoYes bool
	ctx     context.Context
}

// NewPrompter reads answers from in. With autoYes set every question is
// answered yes without reading input.
func NewPrompter(in io.Reader, console *Console, autoYes bool) *Prompter {
	return &Prompter{
		in:      bufio.NewReader(in),
		console: console,
		autoYes: autoYes,
		ctx:     context.Background(),
	}
}

// WithContext makes pending reads give up, as if input had ended, once ctx is
// done.
func (p *Prompter) WithContext(ctx context.Context) *Prompter {
	p.ctx = ctx
	return p
}

type readResult struct {
	line string
	ok   bool
}

// readLine returns the next trimmed, lower-cased line and false at end of input.
func (p *Prompter) readLine() (string, bool) {
	if p.ctx.Err() != nil {
		return "", false
	}
	done := make(chan readResult, 1)
	go func() {
		line, ok := p.read()
		done <- readResult{line: line, ok: ok}
	}()
	select {
	case r := <-done:
		return r.line, r.ok
	case <-p.ctx.Done():
		return "", false
	}
}

func (p *Prompter) read() (string, bool) {
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(line)), true
}

// Confirm asks prompt until the answer is yes or no. End of input or a done
// context counts as no.
func (p *Prompter) Confirm(prompt string) bool {
	if p.ctx.Err() != nil {
		return false
	}
	if p.autoYes {
		p.console.Info("\n%s (y/n): y", prompt)
		return true
	}
	for {
		p.console.Prompt(TonePlain, "\n"+prompt+" (y/n): ")
		answer, ok := p.readLine()
		if !ok {
			p.console.Plain("")
			return false
		}
		switch answer {
		case "y", "yes", "是":
			return true
		case "n", "no", "否":
			return false
		}
		p.console.Warn("Please enter y (yes) or n (no)")
	}
}

// ConfirmDefaultNo asks prompt once; anything other than y or yes is no.
func (p *Prompter) ConfirmDefaultNo(prompt string) bool {
	if p.ctx.Err() != nil {
		return false
	}
	if p.autoYes {
		p.console.Warn("\n%s [y/N] y", prompt)
		return true
	}
	p.console.Prompt(ToneWarn, "\n"+prompt+" [y/N] ")
	answer, _ := p.readLine()
	return answer == "y" || answer == "yes"
}

// WaitEnter blocks until a line is read or input ends.
func (p *Prompter) WaitEnter(prompt string) {
	p.console.Prompt(TonePlain, "\n"+prompt)
	p.readLine()
}
