// Package cmd provides an abstraction layer for executing external commands.
//
// It defines the Executor interface which wraps os/exec functionality, so the
// process guard can be tested against canned pgrep output.
package cmd
