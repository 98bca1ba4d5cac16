// Package app runs the identifier reset.
//
// It makes sure the target application is closed, shows the identifiers that
// are stored now, generates a replacement set and, once the user agrees, writes
// it back through the storage package. Prompts and process handling are behind
// small interfaces so the flow can be driven without a terminal.
package app
