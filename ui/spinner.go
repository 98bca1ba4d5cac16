package ui

import (
	"context"
	"fmt"
	"time"

	"cursor-id-reset/process"

	"github.com/charmbracelet/bubbles/spinner"
)

// Pause waits for d or until ctx is done. On a terminal it animates a
// spinner next to message for the duration and clears the line afterwards.
func (c *Console) Pause(ctx context.Context, d time.Duration, message string) error {
	if !c.isTTY {
		return process.Sleep(ctx, d)
	}

	frames := spinner.MiniDot.Frames
	ticker := time.NewTicker(spinner.MiniDot.FPS)
	defer ticker.Stop()
	deadline := time.NewTimer(d)
	defer deadline.Stop()

	defer func() {
		c.term.ClearLine()
		fmt.Fprint(c.out, "\r")
	}()

	for i := 0; ; i++ {
		fmt.Fprintf(c.out, "\r%s %s", c.styles[ToneInfo].Render(frames[i%len(frames)]), message)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return nil
		case <-ticker.C:
		}
	}
}

