// Package process finds and stops running instances of the target
// application.
//
// Processes are listed with pgrep (case-insensitive name match) through a
// cmd.Executor and terminated with SIGKILL.
package process
