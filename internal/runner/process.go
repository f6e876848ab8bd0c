package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
)

// Command is one external process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string // working directory; empty means the current one
}

// StageResult is the outcome of one external process.
type StageResult struct {
	Succeeded bool   // process exited with status zero
	Output    []byte // captured standard output
}

// Executor runs a command to completion. It returns an error only when the
// process could not be run at all; a non-zero exit is reported through
// StageResult.Succeeded.
type Executor interface {
	Run(ctx context.Context, cmd Command) (StageResult, error)
}

// ProcessExecutor runs commands as host subprocesses, capturing stdout and
// forwarding stderr.
type ProcessExecutor struct {
	// Stderr receives the child's standard error. Nil means os.Stderr.
	Stderr io.Writer
}

// Run implements Executor.
func (p *ProcessExecutor) Run(ctx context.Context, cmd Command) (StageResult, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir

	var stdout bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = p.Stderr
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}

	err := c.Run()
	if err != nil && ctx.Err() != nil {
		return StageResult{Output: stdout.Bytes()}, ctx.Err()
	}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return StageResult{Succeeded: true, Output: stdout.Bytes()}, nil
	case errors.As(err, &exitErr):
		return StageResult{Succeeded: false, Output: stdout.Bytes()}, nil
	default:
		return StageResult{Output: stdout.Bytes()}, err
	}
}

// isNotFound reports whether err means the executable does not exist, as
// opposed to any other failure to start it.
func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}
