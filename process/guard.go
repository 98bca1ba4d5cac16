package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"strings"
	"time"

	"cursor-id-reset/cmd"
	"cursor-id-reset/log"
)

// ErrStillRunning is returned by WaitClosed when the target application is
// still running after the last attempt.
var ErrStillRunning = errors.New("target application is still running")

// Guard lists and terminates processes by name.
type Guard struct {
	cmdExec cmd.Executor
	kill    func(pid int) error
	pause   func(ctx context.Context, d time.Duration) error
	selfPID int
	logger  *log.Logger
}

// Option configures a Guard.
type Option func(*Guard)

// WithPause replaces the wait between polls in WaitClosed, e.g. with one that
// animates a spinner.
func WithPause(pause func(ctx context.Context, d time.Duration) error) Option {
	return func(g *Guard) {
		g.pause = pause
	}
}

// NewGuard returns a Guard that shells out to pgrep and kills with SIGKILL.
func NewGuard(logger *log.Logger, opts ...Option) *Guard {
	return NewGuardWithDeps(cmd.MakeExecutor(), killProcess, logger, opts...)
}

// NewGuardWithDeps returns a Guard with injected dependencies for testing.
func NewGuardWithDeps(cmdExec cmd.Executor, kill func(pid int) error, logger *log.Logger, opts ...Option) *Guard {
	g := &Guard{
		cmdExec: cmdExec,
		kill:    kill,
		pause:   Sleep,
		selfPID: os.Getpid(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ListRunning returns the sorted, de-duplicated PIDs of processes whose name
// matches name, ignoring case. This process is never included.
func (g *Guard) ListRunning(name string) ([]int, error) {
	c := exec.Command("pgrep", "-i", name)
	output, err := g.cmdExec.Output(c)
	if err != nil {
		// pgrep exits with 1 when nothing matched.
		var coded interface{ ExitCode() int }
		if errors.As(err, &coded) && coded.ExitCode() == 1 {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list processes with %q: %w", cmd.ToString(c), err)
	}

	pids, err := parsePIDs(string(output))
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(pids, func(pid int) bool { return pid == g.selfPID }), nil
}

func parsePIDs(output string) ([]int, error) {
	var pids []int
	for _, field := range strings.Fields(output) {
		pid, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("unexpected pgrep output %q: %w", field, err)
		}
		pids = append(pids, pid)
	}
	slices.Sort(pids)
	return slices.Compact(pids), nil
}

// Terminate kills pid.
func (g *Guard) Terminate(pid int) error {
	if err := g.kill(pid); err != nil {
		return fmt.Errorf("failed to terminate process %d: %w", pid, err)
	}
	g.logger.Infof("terminated process %d", pid)
	return nil
}

// TerminateAll kills every pid and returns the ones that could not be killed.
func (g *Guard) TerminateAll(pids []int) []int {
	var failed []int
	for _, pid := range pids {
		if err := g.Terminate(pid); err != nil {
			g.logger.Errorf("%v", err)
			failed = append(failed, pid)
		}
	}
	return failed
}

// WaitClosed polls for processes matching name up to attempts times, pausing
// delay between polls. onAttempt, if set, is called before each pause.
func (g *Guard) WaitClosed(ctx context.Context, name string, attempts int, delay time.Duration, onAttempt func(attempt, max int)) error {
	for attempt := 1; attempt <= attempts; attempt++ {
		pids, err := g.ListRunning(name)
		if err != nil {
			return err
		}
		if len(pids) == 0 {
			return nil
		}

		g.logger.Infof("waiting for %s to exit, attempt %d/%d, pids %v", name, attempt, attempts, pids)
		if onAttempt != nil {
			onAttempt(attempt, attempts)
		}

		if err := g.pause(ctx, delay); err != nil {
			return err
		}
	}
	return ErrStillRunning
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
