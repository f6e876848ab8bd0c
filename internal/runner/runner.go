// Package runner drives build targets through the bsc pipeline.
//
// Every target moves through compile, link and run in order. A stage that
// the toolchain rejects ends the whole invocation; a simulation that exits
// non-zero or never prints the pass marker fails its target and stops the
// remaining targets from being attempted.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5"

	"github.com/dolly-hdl/dolly/internal/errors"
	"github.com/dolly-hdl/dolly/internal/logging"
	"github.com/dolly-hdl/dolly/internal/output"
	"github.com/dolly-hdl/dolly/internal/target"
	"github.com/dolly-hdl/dolly/internal/toolchain"
)

// PassMarker must appear in a simulation's stdout for its test to pass.
const PassMarker = ">>>PASS"

// Failure reasons reported for tests that ran but did not pass.
const (
	ReasonExitStatus    = "simulation exited with non-zero status"
	ReasonMissingMarker = "pass marker " + PassMarker + " not found in output"
)

// Config describes the project a Runner builds.
type Config struct {
	Toolchain toolchain.Toolchain
	// Modules are the module graph directories in discovery order.
	Modules []string
	// ArtifactRoot holds one subdirectory per target stem.
	ArtifactRoot string
	// DefaultTopModule is elaborated for targets that declare none.
	DefaultTopModule string
}

// Runner executes pipelines sequentially. It is not safe for concurrent use.
type Runner struct {
	cfg        Config
	fs         billy.Filesystem
	exec       Executor
	out        *output.Writer
	searchPath string
}

// New creates a Runner. Artifact directories are created through fsys and
// every process is started through exec.
func New(cfg Config, fsys billy.Filesystem, exec Executor) *Runner {
	if cfg.DefaultTopModule == "" {
		cfg.DefaultTopModule = toolchain.DefaultTopModule
	}
	return &Runner{
		cfg:        cfg,
		fs:         fsys,
		exec:       exec,
		out:        output.New(),
		searchPath: cfg.Toolchain.SearchPath(cfg.Modules),
	}
}

// SetOutput replaces the writer used for target progress.
func (r *Runner) SetOutput(w *output.Writer) {
	r.out = w
}

// SearchPath returns the bsc -p value shared by every compile.
func (r *Runner) SearchPath() string {
	return r.searchPath
}

// ArtifactDir returns the directory holding t's intermediates and executable.
func (r *Runner) ArtifactDir(t target.BuildTarget) string {
	return filepath.Join(r.cfg.ArtifactRoot, t.Stem())
}

func (r *Runner) topModule(t target.BuildTarget) string {
	return t.TopModule.Resolve(r.cfg.DefaultTopModule)
}

// Compile compiles t's source for simulation into its artifact directory.
func (r *Runner) Compile(ctx context.Context, t target.BuildTarget) (StageResult, error) {
	dir, err := r.prepare(t)
	if err != nil {
		return StageResult{}, err
	}
	args := r.cfg.Toolchain.CompileArgs(dir, r.searchPath, r.topModule(t), t.Source)
	return r.invoke(ctx, t, errors.StageCompile, args)
}

// Link links the simulation executable for a compiled target.
func (r *Runner) Link(ctx context.Context, t target.BuildTarget) (StageResult, error) {
	dir := r.ArtifactDir(t)
	args := r.cfg.Toolchain.LinkArgs(dir, r.topModule(t), filepath.Join(dir, t.Stem()), t.ExtraLibraries)
	return r.invoke(ctx, t, errors.StageLink, args)
}

// Execute runs a linked simulation from its artifact directory. A non-zero
// exit is reported in the StageResult, not as an error.
func (r *Runner) Execute(ctx context.Context, t target.BuildTarget) (StageResult, error) {
	name, args := r.cfg.Toolchain.RunCommand(t.Stem())
	cmd := Command{Name: name, Args: args, Dir: r.ArtifactDir(t)}
	logging.FromContext(ctx).Debug("running simulation", "target", t.Name(), "cmd", name, "args", args, "dir", cmd.Dir)

	res, err := r.exec.Run(ctx, cmd)
	if err != nil {
		return res, &errors.DollyError{
			Kind:    errors.KindRuntime,
			Target:  t.Name(),
			Stage:   errors.StageRun,
			Message: fmt.Sprintf("starting simulation: %v", err),
			Output:  res.Output,
			Cause:   err,
		}
	}
	return res, nil
}

// Synthesize translates a top-level target to Verilog.
func (r *Runner) Synthesize(ctx context.Context, t target.BuildTarget) (StageResult, error) {
	dir, err := r.prepare(t)
	if err != nil {
		return StageResult{}, err
	}
	args := r.cfg.Toolchain.VerilogArgs(dir, r.searchPath, r.topModule(t), t.Source)
	return r.invoke(ctx, t, errors.StageVerilog, args)
}

// Verify reports whether a simulation run counts as passing.
func Verify(res StageResult) (bool, string) {
	if !res.Succeeded {
		return false, ReasonExitStatus
	}
	if !bytes.Contains(res.Output, []byte(PassMarker)) {
		return false, ReasonMissingMarker
	}
	return true, ""
}

// RunTarget compiles, links, runs and verifies a single test target.
func (r *Runner) RunTarget(ctx context.Context, t target.BuildTarget) (Result, error) {
	return r.pipeline(ctx, t, modeTest)
}

// RunTests runs every target in order, stopping at the first that fails.
func (r *Runner) RunTests(ctx context.Context, targets []target.BuildTarget) (*Outcome, error) {
	return r.runSequential(ctx, targets, modeTest)
}

// BuildTests compiles and links every target without running it.
func (r *Runner) BuildTests(ctx context.Context, targets []target.BuildTarget) (*Outcome, error) {
	return r.runSequential(ctx, targets, modeBuild)
}

// Verilog synthesizes every top-level target.
func (r *Runner) Verilog(ctx context.Context, targets []target.BuildTarget) (*Outcome, error) {
	return r.runSequential(ctx, targets, modeVerilog)
}

type mode int

const (
	modeTest mode = iota
	modeBuild
	modeVerilog
)

func (m mode) String() string {
	switch m {
	case modeBuild:
		return "build"
	case modeVerilog:
		return "verilog"
	default:
		return "test"
	}
}

// runSequential feeds targets through the pipeline one at a time.
func (r *Runner) runSequential(ctx context.Context, targets []target.BuildTarget, m mode) (*Outcome, error) {
	outcome := newOutcome(len(targets))
	defer outcome.finish()

	if len(targets) == 0 {
		r.out.Warning("no targets to %s", m)
		return outcome, nil
	}

	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}

		r.out.TargetStart(t.Kind, t.Name(), m.String())
		res, err := r.pipeline(ctx, t, m)
		outcome.add(res)

		if err != nil {
			r.out.TargetFailed(t.Name(), m.String(), err.Error())
			return outcome, err
		}
		if res.State == Failed {
			r.out.TargetFailed(t.Name(), m.String(), res.Reason)
			break
		}
		r.out.TargetPassed(t.Name(), m.String())
	}
	return outcome, nil
}

func (r *Runner) pipeline(ctx context.Context, t target.BuildTarget, m mode) (Result, error) {
	res := Result{Target: t, Last: Pending}
	fail := func(sr StageResult, err error) (Result, error) {
		res.State = Failed
		res.Output = sr.Output
		res.Err = err
		return res, err
	}

	if m == modeVerilog {
		sr, err := r.Synthesize(ctx, t)
		if err != nil {
			return fail(sr, err)
		}
		res.Last, res.State, res.Output = Compiled, Passed, sr.Output
		return res, nil
	}

	sr, err := r.Compile(ctx, t)
	if err != nil {
		return fail(sr, err)
	}
	res.Last = Compiled

	if sr, err = r.Link(ctx, t); err != nil {
		return fail(sr, err)
	}
	res.Last = Linked

	if m == modeBuild {
		res.State, res.Output = Passed, sr.Output
		return res, nil
	}

	if sr, err = r.Execute(ctx, t); err != nil {
		return fail(sr, err)
	}
	res.Output = sr.Output
	if !sr.Succeeded {
		res.State, res.Reason = Failed, ReasonExitStatus
		return res, nil
	}
	res.Last = Verified

	if ok, reason := Verify(sr); !ok {
		res.State, res.Reason = Failed, reason
		return res, nil
	}
	res.State = Passed
	return res, nil
}

// prepare creates t's artifact directory. Repeated calls are harmless.
func (r *Runner) prepare(t target.BuildTarget) (string, error) {
	dir := r.ArtifactDir(t)
	if err := r.fs.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, fmt.Sprintf("creating artifact directory %s", dir))
	}
	return dir, nil
}

// invoke runs bsc and classifies its result.
func (r *Runner) invoke(ctx context.Context, t target.BuildTarget, stage errors.Stage, args []string) (StageResult, error) {
	name := r.cfg.Toolchain.Name()
	logging.FromContext(ctx).Debug("invoking toolchain", "target", t.Name(), "stage", stage, "cmd", name, "args", args)

	res, err := r.exec.Run(ctx, Command{Name: name, Args: args})
	if err != nil {
		if isNotFound(err) {
			return res, errors.ToolchainNotFound(name, err)
		}
		return res, errors.Wrap(err, fmt.Sprintf("running %s", name))
	}
	if !res.Succeeded {
		return res, errors.StageFailed(t.Name(), stage, res.Output, nil)
	}
	return res, nil
}
