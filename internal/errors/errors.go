// Package errors provides structured error types and exit codes for dolly.
package errors

import (
	"errors"
	"fmt"
)

// Process exit codes. Mirrored publicly in pkg/dolly.
const (
	ExitSuccess          = 0 // Success
	ExitRuntimeError     = 1 // Runtime error (build or test failed, I/O error)
	ExitConfigError      = 2 // Configuration error (invalid dolly.toml, bad flags)
	ExitEnvironmentError = 3 // Environment error (bsc not installed)
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindNotFound
	KindEnvironment
)

// Stage names a pipeline stage a failure originated from.
type Stage string

const (
	StageCompile Stage = "compile"
	StageLink    Stage = "link"
	StageRun     Stage = "run"
	StageVerilog Stage = "verilog"
)

// DollyError is the base error type for dolly.
type DollyError struct {
	Kind    ErrorKind
	Message string
	Target  string // Target name if applicable
	Stage   Stage  // Pipeline stage if applicable
	Output  []byte // Captured toolchain stdout, surfaced verbatim by the CLI
	Cause   error  // Underlying error
}

func (e *DollyError) Error() string {
	if e.Target != "" && e.Stage != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Target, e.Stage, e.Message)
	}
	if e.Target != "" {
		return fmt.Sprintf("[%s] %s", e.Target, e.Message)
	}
	return e.Message
}

func (e *DollyError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *DollyError) ExitCode() int {
	switch e.Kind {
	case KindConfig:
		return ExitConfigError
	case KindEnvironment:
		return ExitEnvironmentError
	default:
		return ExitRuntimeError
	}
}

// New creates a new runtime error.
func New(message string) *DollyError {
	return &DollyError{
		Kind:    KindRuntime,
		Message: message,
	}
}

// Newf creates a new runtime error with formatting.
func Newf(format string, args ...interface{}) *DollyError {
	return New(fmt.Sprintf(format, args...))
}

// Config creates a new configuration error.
func Config(message string) *DollyError {
	return &DollyError{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...interface{}) *DollyError {
	return Config(fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *DollyError {
	return &DollyError{
		Kind:    KindRuntime,
		Message: fmt.Sprintf("%s: %v", message, err),
		Cause:   err,
	}
}

// WrapConfig wraps an error as a configuration error.
func WrapConfig(err error, message string) *DollyError {
	return &DollyError{
		Kind:    KindConfig,
		Message: fmt.Sprintf("%s: %v", message, err),
		Cause:   err,
	}
}

// NotFound creates a not found error.
func NotFound(what, name string) *DollyError {
	return &DollyError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", what, name),
	}
}

// ToolchainNotFound reports that the toolchain executable could not be started.
// It is kept apart from StageFailed so the user is told to install bsc rather
// than to fix their sources.
func ToolchainNotFound(binary string, cause error) *DollyError {
	return &DollyError{
		Kind:    KindEnvironment,
		Message: fmt.Sprintf("toolchain executable %q not found; install Bluespec bsc or set DOLLY_BSC", binary),
		Cause:   cause,
	}
}

// StageFailed creates an error for a toolchain stage that rejected its input.
func StageFailed(target string, stage Stage, output []byte, cause error) *DollyError {
	return &DollyError{
		Kind:    KindRuntime,
		Target:  target,
		Stage:   stage,
		Message: "toolchain returned non-zero exit status",
		Output:  output,
		Cause:   cause,
	}
}

// IsToolchainNotFound reports whether err is or wraps a missing-toolchain error.
func IsToolchainNotFound(err error) bool {
	var de *DollyError
	return errors.As(err, &de) && de.Kind == KindEnvironment
}

// StageOutput returns the captured toolchain output carried by err, if any.
func StageOutput(err error) []byte {
	var de *DollyError
	if errors.As(err, &de) {
		return de.Output
	}
	return nil
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var de *DollyError
	if errors.As(err, &de) {
		return de.ExitCode()
	}
	return ExitRuntimeError
}
