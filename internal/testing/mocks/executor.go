// Package mocks provides shared test doubles for dolly packages.
package mocks

import (
	"context"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/dolly-hdl/dolly/internal/runner"
)

// Stage names used to script an Executor.
const (
	StageCompile = "compile"
	StageLink    = "link"
	StageRun     = "run"
	StageVerilog = "verilog"
)

// Call records one command the Executor received.
type Call struct {
	Stage   string
	Subject string // source stem for toolchain stages, executable for runs
	Cmd     runner.Command
}

type scripted struct {
	result runner.StageResult
	err    error
}

// Executor implements runner.Executor without spawning processes. By default
// every toolchain stage succeeds and every simulation prints the pass marker.
// Use NewExecutor() and the With* methods to script other results.
type Executor struct {
	mu      sync.Mutex
	calls   []Call
	results map[string]scripted
	missing bool
}

// NewExecutor creates an Executor where everything passes.
func NewExecutor() *Executor {
	return &Executor{results: make(map[string]scripted)}
}

func key(stage, subject string) string {
	return stage + "/" + subject
}

// WithResult scripts the result of stage for the target with the given stem.
func (e *Executor) WithResult(stage, stem string, succeeded bool, out string) *Executor {
	e.results[key(stage, stem)] = scripted{result: runner.StageResult{Succeeded: succeeded, Output: []byte(out)}}
	return e
}

// WithError scripts stage for stem to fail to start with err.
func (e *Executor) WithError(stage, stem string, err error) *Executor {
	e.results[key(stage, stem)] = scripted{err: err}
	return e
}

// WithMissingToolchain makes every toolchain invocation fail as if the
// executable were not installed.
func (e *Executor) WithMissingToolchain() *Executor {
	e.missing = true
	return e
}

// Run implements runner.Executor.
func (e *Executor) Run(ctx context.Context, cmd runner.Command) (runner.StageResult, error) {
	stage, subject := Classify(cmd)

	e.mu.Lock()
	e.calls = append(e.calls, Call{Stage: stage, Subject: subject, Cmd: cmd})
	e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return runner.StageResult{}, err
	}
	if e.missing && stage != StageRun {
		return runner.StageResult{}, &exec.Error{Name: cmd.Name, Err: exec.ErrNotFound}
	}
	if s, ok := e.results[key(stage, subject)]; ok {
		return s.result, s.err
	}
	if stage == StageRun {
		return runner.StageResult{Succeeded: true, Output: []byte("running\n" + runner.PassMarker + "\n")}, nil
	}
	return runner.StageResult{Succeeded: true}, nil
}

// Calls returns every recorded call in order.
func (e *Executor) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.calls)
}

// Trace returns "stage/subject" for every recorded call in order.
func (e *Executor) Trace() []string {
	calls := e.Calls()
	trace := make([]string, len(calls))
	for i, c := range calls {
		trace[i] = key(c.Stage, c.Subject)
	}
	return trace
}

// Reset clears recorded calls.
func (e *Executor) Reset() {
	e.mu.Lock()
	e.calls = nil
	e.mu.Unlock()
}

// Classify infers which pipeline stage cmd belongs to and what it acts on.
func Classify(cmd runner.Command) (stage, subject string) {
	switch cmd.Name {
	case "sh", "cmd":
		exe := cmd.Args[len(cmd.Args)-1]
		return StageRun, strings.TrimPrefix(exe, "./")
	}
	switch {
	case slices.Contains(cmd.Args, "-verilog"):
		stage = StageVerilog
	case slices.Contains(cmd.Args, "-e"):
		i := slices.Index(cmd.Args, "-o")
		return StageLink, filepath.Base(cmd.Args[i+1])
	default:
		stage = StageCompile
	}
	src := cmd.Args[len(cmd.Args)-1]
	return stage, strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
}
