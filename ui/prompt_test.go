package ui

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "y", input: "y\n", want: true},
		{name: "yes with spaces and caps", input: "  YES \n", want: true},
		{name: "chinese yes", input: "是\n", want: true},
		{name: "n", input: "n\n", want: false},
		{name: "no", input: "no\n", want: false},
		{name: "chinese no", input: "否\n", want: false},
		{name: "retries until valid", input: "maybe\n\ny\n", want: true},
		{name: "end of input is no", input: "", want: false},
		{name: "last line without newline", input: "y", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, out, _ := newTestConsole()
			p := NewPrompter(strings.NewReader(tt.input), c, false)

			assert.Equal(t, tt.want, p.Confirm("Continue?"))
			assert.Contains(t, out.String(), "Continue? (y/n): ")
		})
	}
}

func TestConfirmRetryMessage(t *testing.T) {
	c, out, _ := newTestConsole()
	p := NewPrompter(strings.NewReader("maybe\nn\n"), c, false)

	assert.False(t, p.Confirm("Continue?"))
	assert.Equal(t, 2, strings.Count(out.String(), "Continue? (y/n): "))
	assert.Contains(t, out.String(), "Please enter y (yes) or n (no)")
}

func TestConfirmAutoYes(t *testing.T) {
	c, out, _ := newTestConsole()
	p := NewPrompter(strings.NewReader(""), c, true)

	assert.True(t, p.Confirm("Overwrite?"))
	assert.True(t, p.ConfirmDefaultNo("Kill?"))
	assert.Contains(t, out.String(), "Overwrite? (y/n): y")
}

func TestConfirmDefaultNo(t *testing.T) {
	for input, want := range map[string]bool{
		"y\n":    true,
		"Yes\n":  true,
		"\n":     false,
		"n\n":    false,
		"sure\n": false,
		"":       false,
	} {
		c, _, _ := newTestConsole()
		p := NewPrompter(strings.NewReader(input), c, false)
		assert.Equal(t, want, p.ConfirmDefaultNo("Kill these processes?"), "input %q", input)
	}
}

func TestWaitEnter(t *testing.T) {
	c, out, _ := newTestConsole()
	p := NewPrompter(strings.NewReader("\nleftover\n"), c, false)

	p.WaitEnter("Press Enter to exit...")
	assert.Contains(t, out.String(), "Press Enter to exit...")

	// Only one line is consumed.
	assert.False(t, p.Confirm("next?"))
}

func TestConfirmGivesUpWhenCancelled(t *testing.T) {
	c, _, _ := newTestConsole()
	in, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	p := NewPrompter(in, c, false).WithContext(ctx)

	answered := make(chan bool, 1)
	go func() { answered <- p.Confirm("Continue?") }()
	cancel()

	select {
	case got := <-answered:
		assert.False(t, got)
	case <-time.After(2 * time.Second):
		t.Fatal("Confirm kept waiting for input after cancel")
	}

	// Later questions don't read at all, even with auto-yes.
	assert.False(t, NewPrompter(in, c, true).WithContext(ctx).ConfirmDefaultNo("Kill?"))
}
