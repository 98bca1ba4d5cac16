package ui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"cursor-id-reset/identity"
	"cursor-id-reset/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsole() (*Console, *bytes.Buffer, *bytes.Buffer) {
	var out, logBuf bytes.Buffer
	return NewConsole(&out, log.New(&logBuf, false)), &out, &logBuf
}

func TestConsolePrint(t *testing.T) {
	c, out, logBuf := newTestConsole()

	c.Info("\nreading configuration %s", "now")
	c.Error("boom")
	c.Plain("")

	assert.Equal(t, "\nreading configuration now\nboom\n\n", out.String())
	assert.Contains(t, logBuf.String(), "INFO - reading configuration now\n")
	assert.Contains(t, logBuf.String(), "ERROR - boom\n")
	assert.False(t, c.IsTerminal())
}

func TestConsoleClearScreenOffTerminal(t *testing.T) {
	c, out, _ := newTestConsole()
	c.ClearScreen()
	assert.Empty(t, out.String())
}

func TestShowSet(t *testing.T) {
	c, out, _ := newTestConsole()
	c.ShowSet("Current configuration", identity.IdentifierSet{
		MacMachineID: "mac",
		MachineID:    "machine",
		DevDeviceID:  "device",
	})

	assert.Equal(t, strings.Join([]string{
		"",
		"[Current configuration]",
		"Machine ID: machine",
		"Mac Machine ID: mac",
		"Dev Device ID: device",
		"SQM ID: (none)",
		"",
	}, "\n"), out.String())
}

func TestShowComparison(t *testing.T) {
	c, out, _ := newTestConsole()
	old := identity.IdentifierSet{MacMachineID: "a", MachineID: "b", DevDeviceID: "c", SQMID: "s"}
	updated := identity.IdentifierSet{MacMachineID: "x", MachineID: "y", DevDeviceID: "z", SQMID: "s"}

	c.ShowComparison(old, updated)

	text := out.String()
	assert.Contains(t, text, "Machine ID:\n  - b\n  + y\n")
	assert.Contains(t, text, "SQM ID: unchanged\n")
}

func TestBanner(t *testing.T) {
	c, out, _ := newTestConsole()
	c.PrintBanner("1.2.3")

	text := out.String()
	assert.Contains(t, text, "██████╗")
	assert.Contains(t, text, ">> Cursor ID reset 1.2.3 <<")
	assert.True(t, strings.HasSuffix(text, "\n\n"))
}

func TestPadLines(t *testing.T) {
	padded := padLines("ab\nabcd\n")
	for _, line := range strings.Split(padded, "\n") {
		assert.Len(t, line, 4)
	}
}

func TestPauseOffTerminal(t *testing.T) {
	c, out, _ := newTestConsole()

	start := time.Now()
	require.NoError(t, c.Pause(context.Background(), 10*time.Millisecond, "please wait"))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
	assert.Empty(t, out.String(), "no spinner off a terminal")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Pause(ctx, time.Hour, "please wait"), context.Canceled)
}

func TestProgress(t *testing.T) {
	c, _, _ := newTestConsole()

	assert.Equal(t, "█████░░░░░", c.Progress(1, 2, 10))
	assert.Equal(t, "░░░░░░░░░░", c.Progress(1, 0, 10))
	assert.Equal(t, "██████████", c.Progress(3, 3, 10))
}
