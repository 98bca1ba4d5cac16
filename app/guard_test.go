package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"cursor-id-reset/cmd/cmd_test"
	"cursor-id-reset/log"
	"cursor-id-reset/process"
	"cursor-id-reset/ui"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit status %d", int(e)) }
func (e exitCode) ExitCode() int { return int(e) }

type answer bool

func (a answer) ConfirmDefaultNo(string) bool { return bool(a) }

// pgrepSequence returns each output in turn, repeating the last one. An empty
// output means no match.
func pgrepSequence(outputs ...string) cmd_test.MockCmdExec {
	i := 0
	return cmd_test.MockCmdExec{
		OutputFunc: func(*exec.Cmd) ([]byte, error) {
			out := outputs[len(outputs)-1]
			if i < len(outputs) {
				out = outputs[i]
			}
			i++
			if out == "" {
				return nil, exitCode(1)
			}
			return []byte(out), nil
		},
	}
}

func noPause(context.Context, time.Duration) error { return nil }

func newKillGuard(cmdExec cmd_test.MockCmdExec, kill func(int) error, confirm bool) (*KillGuard, *bytes.Buffer, *[]string) {
	out := &bytes.Buffer{}
	logger := log.NewNop()
	console := ui.NewConsole(out, logger)
	guard := process.NewGuardWithDeps(cmdExec, kill, logger, process.WithPause(noPause))
	k := NewKillGuard(guard, answer(confirm), console, 3, time.Millisecond)
	var copied []string
	k.copy = func(s string) error {
		copied = append(copied, s)
		return nil
	}
	return k, out, &copied
}

func TestKillCommand(t *testing.T) {
	assert.Equal(t, "kill -9 12 345", KillCommand([]int{12, 345}))
}

func TestKillGuardNothingRunning(t *testing.T) {
	k, out, _ := newKillGuard(pgrepSequence(""), nil, false)

	closed, err := k.ListAndMaybeKill(context.Background(), "cursor")
	require.NoError(t, err)
	assert.True(t, closed)
	assert.Contains(t, out.String(), "No running cursor processes")
}

func TestKillGuardDeclined(t *testing.T) {
	k, out, copied := newKillGuard(pgrepSequence("101\n202\n"), func(int) error {
		t.Fatal("kill must not be called")
		return nil
	}, false)

	closed, err := k.ListAndMaybeKill(context.Background(), "cursor")
	require.NoError(t, err)
	assert.False(t, closed)
	assert.Contains(t, out.String(), "PID: 101")
	assert.Contains(t, out.String(), "kill -9 101 202")
	assert.Equal(t, []string{"kill -9 101 202"}, *copied)
}

func TestKillGuardKillsAndWaits(t *testing.T) {
	var killed []int
	k, out, _ := newKillGuard(pgrepSequence("101\n202\n", "202\n", ""), func(pid int) error {
		killed = append(killed, pid)
		if pid == 202 {
			return errors.New("permission denied")
		}
		return nil
	}, true)

	closed, err := k.ListAndMaybeKill(context.Background(), "cursor")
	require.NoError(t, err)
	assert.True(t, closed)
	assert.Equal(t, []int{101, 202}, killed)
	assert.Contains(t, out.String(), "Terminated process 101")
	assert.Contains(t, out.String(), "Failed to terminate process 202")
	assert.Contains(t, out.String(), "Waiting for cursor to exit (1/3)")
	assert.Contains(t, out.String(), "All cursor processes closed")
}

func TestKillGuardStillRunning(t *testing.T) {
	k, _, _ := newKillGuard(pgrepSequence("101\n"), func(int) error { return nil }, true)

	closed, err := k.ListAndMaybeKill(context.Background(), "cursor")
	assert.False(t, closed)
	assert.ErrorIs(t, err, process.ErrStillRunning)
}

func TestKillGuardListFailure(t *testing.T) {
	k, _, _ := newKillGuard(cmd_test.MockCmdExec{
		OutputFunc: func(*exec.Cmd) ([]byte, error) { return nil, exitCode(2) },
	}, nil, true)

	_, err := k.ListAndMaybeKill(context.Background(), "cursor")
	assert.Error(t, err)
}
