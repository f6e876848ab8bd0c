package cli

import (
	"context"
	stderrors "errors"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dolly-hdl/dolly/internal/errors"
	"github.com/dolly-hdl/dolly/internal/output"
	"github.com/dolly-hdl/dolly/internal/runner"
)

var titleCase = cases.Title(language.English)

// report prints the outcome of a pipeline command and returns its exit code.
// The summary always comes first, followed by the failing stage's output.
func report(cmd string, outcome *runner.Outcome, err error) int {
	if outcome != nil {
		out.Summary(newSummary(cmd, outcome))
		if failed, ok := outcome.FirstFailure(); ok {
			out.StageOutput(failed.Target.Name(), failed.Output)
		}
	}

	if err != nil {
		if stderrors.Is(err, context.Canceled) {
			out.ErrorPrefix("%s interrupted", cmd)
		} else {
			out.ErrorPrefix("%v", err)
		}
		return errors.GetExitCode(err)
	}
	if outcome != nil && !outcome.AllPassed {
		return errors.ExitRuntimeError
	}
	return errors.ExitSuccess
}

// newSummary tallies outcome for the command that produced it.
func newSummary(cmd string, outcome *runner.Outcome) output.Summary {
	s := output.Summary{
		Title:   titleCase.String(cmd),
		Noun:    summaryNoun(cmd),
		Passed:  outcome.Passed(),
		Failed:  outcome.Failed(),
		Skipped: outcome.Skipped(),
		Total:   outcome.Total,
	}
	for _, r := range outcome.Results {
		if r.State == runner.Failed {
			s.Failures = append(s.Failures, output.Failure{Name: r.Target.Name(), Reason: failureReason(r)})
		}
	}
	return s
}

func summaryNoun(cmd string) string {
	switch cmd {
	case "verilog":
		return "synthesis targets"
	case "build":
		return "builds"
	default:
		return "tests"
	}
}

// failureReason describes why r failed in a few words.
func failureReason(r runner.Result) string {
	if r.Reason != "" {
		return r.Reason
	}
	var de *errors.DollyError
	if stderrors.As(r.Err, &de) && de.Stage != "" {
		return fmt.Sprintf("%s failed", de.Stage)
	}
	if r.Err != nil {
		return r.Err.Error()
	}
	return "failed"
}
