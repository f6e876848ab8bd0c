// Package output renders what a dolly user reads: target progress, pipeline
// summaries, listings and help. Diagnostics go through slog instead.
package output

import (
	"fmt"
	"io"
	"os"
)

// ANSI styles.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

// Writer prints to a stdout/stderr pair, coloring only when asked to.
type Writer struct {
	out   io.Writer
	err   io.Writer
	color bool
	quiet bool
}

// New returns a Writer on the process streams, colored when stdout is a
// terminal.
func New() *Writer {
	return &Writer{out: os.Stdout, err: os.Stderr, color: isTerminal()}
}

// NewWithWriters returns a Writer on the given streams.
func NewWithWriters(out, err io.Writer, color bool) *Writer {
	return &Writer{out: out, err: err, color: color}
}

// SetQuiet suppresses Info and progress banners. Errors, summaries and
// requested listings are always printed.
func (w *Writer) SetQuiet(quiet bool) {
	w.quiet = quiet
}

// paint wraps s in style when color is enabled.
func (w *Writer) paint(style, s string) string {
	if !w.color || style == "" {
		return s
	}
	return style + s + reset
}

// Print writes to stdout.
func (w *Writer) Print(format string, args ...any) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a line to stdout.
func (w *Writer) Println(format string, args ...any) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Info writes a line to stdout unless quiet.
func (w *Writer) Info(format string, args ...any) {
	if w.quiet {
		return
	}
	w.Println(format, args...)
}

// ErrorPrefix writes "dolly: <msg>" to stderr.
func (w *Writer) ErrorPrefix(format string, args ...any) {
	fmt.Fprintf(w.err, "%s %s\n", w.paint(red, "dolly:"), fmt.Sprintf(format, args...))
}

// Warning writes "warning: <msg>" to stderr.
func (w *Writer) Warning(format string, args ...any) {
	fmt.Fprintf(w.err, "%s %s\n", w.paint(yellow, "warning:"), fmt.Sprintf(format, args...))
}

// Hint writes a dimmed suggestion to stdout.
func (w *Writer) Hint(format string, args ...any) {
	w.Println("%s", w.paint(dim, fmt.Sprintf(format, args...)))
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
