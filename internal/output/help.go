package output

import (
	"regexp"
	"strings"
)

// placeholder matches <dir>, <fmt> and the like in usage text.
var placeholder = regexp.MustCompile(`<[^<>]+>`)

// highlight colors placeholders inside text drawn in base.
func (w *Writer) highlight(text, base string) string {
	if !w.color {
		return text
	}
	return base + placeholder.ReplaceAllStringFunc(text, func(p string) string {
		return reset + green + p + reset + base
	}) + reset
}

// entry prints an indented name column of the given width and a description.
// Padding is computed on the uncolored name.
func (w *Writer) entry(name, style, description string, width int) {
	pad := strings.Repeat(" ", max(width-len(name), 0))
	w.Println("  %s%s  %s", w.highlight(name, style), pad, w.paint(dim, description))
}

// HelpTitle prints the first line of a help page.
func (w *Writer) HelpTitle(title string) {
	w.Println("%s", w.paint(bold+cyan, title))
}

// HelpSection starts a titled block such as "Options:".
func (w *Writer) HelpSection(title string) {
	w.Println("")
	w.Println("%s", w.paint(bold+yellow, title))
}

// HelpUsage prints one synopsis line.
func (w *Writer) HelpUsage(usage string) {
	w.Println("  %s", w.highlight(usage, ""))
}

// HelpCommand prints a command and what it does.
func (w *Writer) HelpCommand(name, description string, width int) {
	w.entry(name, bold+cyan, description, width)
}

// HelpFlag prints a flag and what it does.
func (w *Writer) HelpFlag(name, description string, width int) {
	w.entry(name, yellow, description, width)
}

// HelpEnvVar prints an environment variable and what it does.
func (w *Writer) HelpEnvVar(name, description string, width int) {
	w.entry(name, yellow, description, width)
}

// HelpExample prints an example invocation with an optional explanation
// below it.
func (w *Writer) HelpExample(command, description string) {
	w.Println("  %s", w.paint(cyan, command))
	if description != "" {
		w.Println("      %s", w.paint(dim, description))
	}
}
