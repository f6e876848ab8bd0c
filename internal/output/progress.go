package output

import (
	"bytes"
	"fmt"

	"github.com/dolly-hdl/dolly/internal/target"
)

// kindLabel names a target kind in banners.
func kindLabel(k target.Kind) string {
	switch k {
	case target.KindUnitTest:
		return "unit test"
	case target.KindIntegrationTest:
		return "integration test"
	case target.KindTopLevel:
		return "top module"
	default:
		return string(k)
	}
}

// TargetStart prints the banner opening one target's pipeline, e.g.
//
//	─── [Fifo_tb] test (unit test) ───
func (w *Writer) TargetStart(kind target.Kind, name, action string) {
	if w.quiet {
		return
	}
	label := fmt.Sprintf("─── [%s] %s (%s) ───", name, action, kindLabel(kind))
	w.Println("")
	w.Println("%s", w.paint(bold+cyan, label))
}

// TargetPassed reports that a target's pipeline finished.
func (w *Writer) TargetPassed(name, action string) {
	if w.quiet {
		return
	}
	if w.color {
		w.Println("%s %s %s", w.paint(green, "["+name+"]"), action, w.paint(green, "✓"))
		return
	}
	w.Println("[%s] %s passed", name, action)
}

// TargetFailed reports on stderr why a target's pipeline stopped.
func (w *Writer) TargetFailed(name, action, reason string) {
	head := fmt.Sprintf("[%s] %s failed:", name, action)
	fmt.Fprintf(w.err, "%s %s\n", w.paint(red, head), reason)
}

// StageOutput prints the captured stdout of name's last stage verbatim under
// a label, terminating it with a newline if the tool did not.
func (w *Writer) StageOutput(name string, p []byte) {
	if len(p) == 0 {
		return
	}
	w.Println("")
	w.Println("  %s", w.paint(dim, "Output of "+name+":"))
	_, _ = w.out.Write(p)
	if !bytes.HasSuffix(p, []byte("\n")) {
		w.Println("")
	}
}
