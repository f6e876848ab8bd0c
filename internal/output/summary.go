package output

import "fmt"

// Failure is one failed target in a Summary.
type Failure struct {
	Name   string
	Reason string
}

// Summary is the tally of one pipeline invocation.
type Summary struct {
	Title    string // "Test", "Build", "Verilog"
	Noun     string // plural of what was counted, e.g. "tests"
	Passed   int
	Failed   int
	Skipped  int // never attempted after an earlier failure
	Total    int
	Failures []Failure
}

// AllPassed reports whether every counted target was attempted and passed.
func (s Summary) AllPassed() bool {
	return s.Passed == s.Total
}

// Summary prints s. Zero Failed and Skipped counts are omitted.
func (w *Writer) Summary(s Summary) {
	w.Println("")
	w.Println("%s", w.paint(bold+cyan, "=== "+s.Title+" Summary ==="))
	w.Println("")

	w.count("Passed", s.Passed, green)
	if s.Failed > 0 {
		w.count("Failed", s.Failed, red)
	}
	if s.Skipped > 0 {
		w.count("Skipped", s.Skipped, "")
	}
	w.count("Total", s.Total, "")

	if len(s.Failures) > 0 {
		w.Println("")
		w.Println("  %s", w.paint(dim, "Failed Targets:"))
		for _, f := range s.Failures {
			w.Println("    %s: %s", f.Name, w.paint(red, f.Reason))
		}
	}

	w.Println("")
	if s.AllPassed() {
		w.Println("%s", w.paint(green, fmt.Sprintf("All %d %s passed.", s.Total, s.Noun)))
	} else {
		w.Println("%s", w.paint(red, fmt.Sprintf("%d of %d %s did not pass.", s.Total-s.Passed, s.Total, s.Noun)))
	}
}

func (w *Writer) count(label string, n int, style string) {
	w.Println("  %s %s", w.paint(dim, label+":"), w.paint(style, fmt.Sprint(n)))
}
