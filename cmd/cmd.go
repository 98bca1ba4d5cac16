package cmd

import (
	"os/exec"
	"strings"
)

// Executor runs external commands.
type Executor interface {
	Run(cmd *exec.Cmd) error
	Output(cmd *exec.Cmd) ([]byte, error)
}

type execExecutor struct{}

func (e execExecutor) Run(cmd *exec.Cmd) error {
	return cmd.Run()
}

func (e execExecutor) Output(cmd *exec.Cmd) ([]byte, error) {
	return cmd.Output()
}

// MakeExecutor returns an Executor backed by os/exec.
func MakeExecutor() Executor {
	return execExecutor{}
}

// ToString renders cmd as a shell-like string for logging.
func ToString(cmd *exec.Cmd) string {
	if cmd == nil {
		return "<nil>"
	}
	return strings.Join(cmd.Args, " ")
}
