// Package cli provides the command-line interface for dolly.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/dolly-hdl/dolly/internal/errors"
	"github.com/dolly-hdl/dolly/internal/fsutil"
	"github.com/dolly-hdl/dolly/internal/logging"
	"github.com/dolly-hdl/dolly/internal/output"
	"github.com/dolly-hdl/dolly/internal/runner"
)

// Version is set at build time.
var Version = "dev"

var (
	// out is the shared output writer for CLI commands.
	out = output.New()

	// logOutput receives diagnostic log records.
	logOutput io.Writer = os.Stderr

	// hostFS is the filesystem every command reads and writes.
	hostFS = fsutil.Native()

	// newExecutor returns the process runner used by pipeline commands.
	newExecutor = func() runner.Executor { return &runner.ProcessExecutor{} }
)

// wantsHelp returns true if args contain -h or --help before any -- separator.
func wantsHelp(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == "--help" {
			return true
		}
		if arg == "--" {
			return false
		}
	}
	return false
}

// Run executes the CLI with the given arguments and returns an exit code.
// An interrupt cancels the running command.
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return RunContext(ctx, args)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, args []string) int {
	if len(args) == 0 {
		printUsage()
		return errors.ExitSuccess
	}

	opts, remaining, err := parseGlobalFlags(args)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitConfigError
	}

	if len(remaining) == 0 {
		printUsage()
		return errors.ExitSuccess
	}
	cmd := remaining[0]
	cmdArgs := remaining[1:]

	ctx = logging.WithLogger(ctx, newLogger(opts))

	switch cmd {
	case "-h", "--help", "help":
		printUsage()
		return errors.ExitSuccess
	case "--version", "version":
		out.Println("dolly %s", Version)
		return errors.ExitSuccess

	// Pipeline commands
	case "build", "test", "verilog":
		return cmdPipeline(ctx, cmd, cmdArgs)

	// Project commands
	case "init":
		return cmdInit(cmdArgs)
	case "clean":
		return cmdClean(ctx, cmdArgs)
	case "targets":
		return cmdTargets(ctx, cmdArgs)

	default:
		out.ErrorPrefix("unknown command %q", cmd)
		out.Hint("Run 'dolly help' for a list of commands.")
		return errors.ExitConfigError
	}
}

// GlobalOptions holds parsed global flags.
type GlobalOptions struct {
	Quiet   bool
	Verbose bool
}

// parseGlobalFlags extracts global flags from anywhere in the argument list.
// Command-specific flags are left in place for the command's own flag set.
func parseGlobalFlags(args []string) (*GlobalOptions, []string, error) {
	opts := &GlobalOptions{}
	var remaining []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-q", "--quiet":
			opts.Quiet = true
		case "-v", "--verbose":
			opts.Verbose = true
		case "--":
			remaining = append(remaining, args[i:]...)
			i = len(args)
		default:
			remaining = append(remaining, arg)
		}
	}

	if opts.Quiet && opts.Verbose {
		return nil, nil, fmt.Errorf("--quiet and --verbose are mutually exclusive")
	}

	out.SetQuiet(opts.Quiet)
	return opts, remaining, nil
}

// newLogger builds the diagnostic logger. Flags take precedence over DOLLY_LOG.
func newLogger(opts *GlobalOptions) *slog.Logger {
	level := logging.ParseLevel(os.Getenv(logging.EnvLevel))
	switch {
	case opts.Verbose:
		level = slog.LevelDebug
	case opts.Quiet:
		level = slog.LevelError
	}
	return logging.New(level, logOutput)
}
