// Package apperr defines the two error kinds surfaced by the reset flow.
//
// Error is a closed set: only *ConfigError and *SystemError implement it, so a
// type switch over the two covers every case.
package apperr

import "fmt"

// Error is implemented by *ConfigError and *SystemError only.
type Error interface {
	error
	Kind() string
	appError()
}

// ConfigError reports a failure reading or writing the target application's
// storage file.
type ConfigError struct {
	Op   string
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("[%s] %s: %v (path: %s)", e.Kind(), e.Op, e.Err, e.Path)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Kind() string { return "config_error" }

func (e *ConfigError) appError() {}

// SystemError reports an environment failure such as an unresolved username.
type SystemError struct {
	Op  string
	Err error
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Kind(), e.Op, e.Err)
}

func (e *SystemError) Unwrap() error { return e.Err }

func (e *SystemError) Kind() string { return "system_error" }

func (e *SystemError) appError() {}

// Config wraps err as a ConfigError. A nil err yields nil.
func Config(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &ConfigError{Op: op, Path: path, Err: err}
}

// System wraps err as a SystemError. A nil err yields nil.
func System(op string, err error) error {
	if err == nil {
		return nil
	}
	return &SystemError{Op: op, Err: err}
}
