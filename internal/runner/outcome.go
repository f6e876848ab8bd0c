package runner

import (
	"github.com/dolly-hdl/dolly/internal/target"
)

// State is a target's position in the pipeline.
//
//	Pending → Compiled → Linked → Verified → Passed
//	   └──────────┴─────────┴─────────┴──────→ Failed
type State int

const (
	Pending State = iota
	Compiled
	Linked
	Verified
	Passed
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Compiled:
		return "compiled"
	case Linked:
		return "linked"
	case Verified:
		return "verified"
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends a target's pipeline.
func (s State) Terminal() bool {
	return s == Passed || s == Failed
}

// Result records how far one target got.
type Result struct {
	Target target.BuildTarget
	State  State  // Passed or Failed
	Last   State  // last non-terminal state reached before State
	Output []byte // stdout of the last stage that ran
	Reason string // why a test that ran did not pass
	Err    error  // set when a toolchain stage failed or could not start
}

// Outcome aggregates one pipeline invocation. It is never persisted.
type Outcome struct {
	Results   []Result
	Total     int  // number of targets handed to the pipeline
	AllPassed bool // every target was attempted and passed
}

func newOutcome(total int) *Outcome {
	return &Outcome{Total: total}
}

func (o *Outcome) add(r Result) {
	o.Results = append(o.Results, r)
}

func (o *Outcome) finish() {
	o.AllPassed = o.Passed() == o.Total
}

// Passed returns the number of targets that passed.
func (o *Outcome) Passed() int {
	n := 0
	for _, r := range o.Results {
		if r.State == Passed {
			n++
		}
	}
	return n
}

// Failed returns the number of targets that failed.
func (o *Outcome) Failed() int {
	return len(o.Results) - o.Passed()
}

// Skipped returns the number of targets never attempted because an earlier
// target failed.
func (o *Outcome) Skipped() int {
	return o.Total - len(o.Results)
}

// FirstFailure returns the first failed result, if any.
func (o *Outcome) FirstFailure() (Result, bool) {
	for _, r := range o.Results {
		if r.State == Failed {
			return r, true
		}
	}
	return Result{}, false
}
