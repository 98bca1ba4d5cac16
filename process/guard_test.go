package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"cursor-id-reset/cmd/cmd_test"
	"cursor-id-reset/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exitError mimics *exec.ExitError for a given exit code.
type exitError int

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", int(e)) }
func (e exitError) ExitCode() int { return int(e) }

func pgrepReturning(outputs ...string) (cmd_test.MockCmdExec, *[]string) {
	var calls []string
	i := 0
	return cmd_test.MockCmdExec{
		OutputFunc: func(c *exec.Cmd) ([]byte, error) {
			calls = append(calls, strings.Join(c.Args, " "))
			out := outputs[len(outputs)-1]
			if i < len(outputs) {
				out = outputs[i]
			}
			i++
			if out == "" {
				return nil, exitError(1)
			}
			return []byte(out), nil
		},
	}, &calls
}

func noKill(int) error { return nil }

func TestListRunning(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []int
	}{
		{name: "no processes", output: "", want: nil},
		{name: "single process", output: "123\n", want: []int{123}},
		{name: "sorted and de-duplicated", output: "30\n10\n30\n20\n", want: []int{10, 20, 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, calls := pgrepReturning(tt.output)
			g := NewGuardWithDeps(mock, noKill, log.NewNop())

			pids, err := g.ListRunning("cursor")
			require.NoError(t, err)
			assert.Equal(t, tt.want, pids)
			assert.Equal(t, []string{"pgrep -i cursor"}, *calls)
		})
	}
}

func TestListRunningExcludesSelf(t *testing.T) {
	mock, _ := pgrepReturning(fmt.Sprintf("1\n%d\n2\n", os.Getpid()))
	g := NewGuardWithDeps(mock, noKill, log.NewNop())

	pids, err := g.ListRunning("cursor")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, pids)
}

func TestListRunningErrors(t *testing.T) {
	t.Run("pgrep failure", func(t *testing.T) {
		mock := cmd_test.MockCmdExec{
			OutputFunc: func(*exec.Cmd) ([]byte, error) { return nil, exitError(2) },
		}
		_, err := NewGuardWithDeps(mock, noKill, log.NewNop()).ListRunning("cursor")
		assert.ErrorContains(t, err, "pgrep -i cursor")
	})

	t.Run("garbage output", func(t *testing.T) {
		mock, _ := pgrepReturning("12 abc\n")
		_, err := NewGuardWithDeps(mock, noKill, log.NewNop()).ListRunning("cursor")
		assert.ErrorContains(t, err, "unexpected pgrep output")
	})
}

func TestTerminateAll(t *testing.T) {
	var killed []int
	kill := func(pid int) error {
		if pid == 2 {
			return errors.New("operation not permitted")
		}
		killed = append(killed, pid)
		return nil
	}
	mock, _ := pgrepReturning("")
	g := NewGuardWithDeps(mock, kill, log.NewNop())

	failed := g.TerminateAll([]int{1, 2, 3})
	assert.Equal(t, []int{1, 3}, killed)
	assert.Equal(t, []int{2}, failed)
	assert.ErrorContains(t, g.Terminate(2), "failed to terminate process 2")
}

func TestWaitClosed(t *testing.T) {
	t.Run("closed immediately", func(t *testing.T) {
		mock, calls := pgrepReturning("")
		g := NewGuardWithDeps(mock, noKill, log.NewNop())

		err := g.WaitClosed(context.Background(), "cursor", 3, time.Millisecond, func(int, int) {
			t.Fatal("no attempt expected")
		})
		require.NoError(t, err)
		assert.Len(t, *calls, 1)
	})

	t.Run("closes on second poll", func(t *testing.T) {
		mock, calls := pgrepReturning("42\n", "")
		g := NewGuardWithDeps(mock, noKill, log.NewNop())

		var attempts []int
		err := g.WaitClosed(context.Background(), "cursor", 3, time.Millisecond, func(attempt, max int) {
			attempts = append(attempts, attempt)
			assert.Equal(t, 3, max)
		})
		require.NoError(t, err)
		assert.Equal(t, []int{1}, attempts)
		assert.Len(t, *calls, 2)
	})

	t.Run("gives up after the attempt cap", func(t *testing.T) {
		mock, calls := pgrepReturning("42\n")
		g := NewGuardWithDeps(mock, noKill, log.NewNop())

		err := g.WaitClosed(context.Background(), "cursor", 3, time.Millisecond, nil)
		assert.ErrorIs(t, err, ErrStillRunning)
		assert.Len(t, *calls, 3)
	})

	t.Run("cancelled", func(t *testing.T) {
		mock, _ := pgrepReturning("42\n")
		g := NewGuardWithDeps(mock, noKill, log.NewNop())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := g.WaitClosed(ctx, "cursor", 3, time.Hour, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestWaitClosedUsesPause(t *testing.T) {
	mock, _ := pgrepReturning("42\n", "42\n", "")
	var pauses []time.Duration
	pause := func(_ context.Context, d time.Duration) error {
		pauses = append(pauses, d)
		return nil
	}
	g := NewGuardWithDeps(mock, noKill, log.NewNop(), WithPause(pause))

	require.NoError(t, g.WaitClosed(context.Background(), "cursor", 3, 5*time.Second, nil))
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, pauses)
}
