package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"cursor-id-reset/process"
	"cursor-id-reset/ui"

	"github.com/atotto/clipboard"
)

const progressWidth = 20

// DefaultNoConfirmer asks a question whose default answer is no.
type DefaultNoConfirmer interface {
	ConfirmDefaultNo(prompt string) bool
}

// KillGuard is the interactive ProcessGuard. It lists matching processes,
// offers to kill them and waits for them to exit.
type KillGuard struct {
	guard     *process.Guard
	confirmer DefaultNoConfirmer
	console   *ui.Console
	attempts  int
	delay     time.Duration
	copy      func(string) error
}

// NewKillGuard returns a KillGuard that polls up to attempts times, delay
// apart, after killing.
func NewKillGuard(guard *process.Guard, confirmer DefaultNoConfirmer, console *ui.Console, attempts int, delay time.Duration) *KillGuard {
	return &KillGuard{
		guard:     guard,
		confirmer: confirmer,
		console:   console,
		attempts:  attempts,
		delay:     delay,
		copy:      clipboard.WriteAll,
	}
}

// KillCommand returns the shell command that kills pids.
func KillCommand(pids []int) string {
	parts := make([]string, 0, len(pids)+2)
	parts = append(parts, "kill", "-9")
	for _, pid := range pids {
		parts = append(parts, strconv.Itoa(pid))
	}
	return strings.Join(parts, " ")
}

func (k *KillGuard) ListAndMaybeKill(ctx context.Context, name string) (bool, error) {
	pids, err := k.guard.ListRunning(name)
	if err != nil {
		return false, err
	}
	if len(pids) == 0 {
		k.console.Success("No running %s processes", name)
		return true, nil
	}

	k.console.Warn("\nFound running %s processes:", name)
	for _, pid := range pids {
		k.console.Plain("  PID: %d", pid)
	}

	if !k.confirmer.ConfirmDefaultNo("Close these processes now?") {
		command := KillCommand(pids)
		k.console.Plain("\nClose them manually with:")
		k.console.Print(ui.ToneAccent, "  %s", command)
		if err := k.copy(command); err == nil {
			k.console.Plain("(copied to clipboard)")
		}
		return false, nil
	}

	k.console.Info("\n⚡ Closing %s...", name)
	failed := k.guard.TerminateAll(pids)
	for _, pid := range pids {
		if slices.Contains(failed, pid) {
			k.console.Error("Failed to terminate process %d", pid)
		} else {
			k.console.Success("Terminated process %d", pid)
		}
	}

	err = k.guard.WaitClosed(ctx, name, k.attempts, k.delay, func(attempt, max int) {
		k.console.Warn("%s Waiting for %s to exit (%d/%d)", k.console.Progress(attempt, max, progressWidth), name, attempt, max)
	})
	if errors.Is(err, process.ErrStillRunning) {
		return false, fmt.Errorf("%s did not exit after %d attempts: %w", name, k.attempts, err)
	}
	if err != nil {
		return false, err
	}
	k.console.Success("All %s processes closed", name)
	return true, nil
}

