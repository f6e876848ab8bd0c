// Package directive extracts dolly directives from BSV source text.
//
// Directives are line comments of the form
//
//	//!submodule   Uart
//	//!extra_library ../c/uart_model.c
//	//!topmodule   mkUart_tb
//
// The keyword is case-insensitive and surrounding whitespace is ignored.
// Module names capture word characters; library paths capture everything up
// to the next whitespace.
package directive

import (
	"context"
	"fmt"
	"iter"
	"regexp"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/dolly-hdl/dolly/internal/logging"
)

// Kind selects one of the recognised directives.
type Kind int

const (
	Submodule Kind = iota
	ExtraLibrary
	TopModule
)

func (k Kind) String() string {
	switch k {
	case Submodule:
		return "submodule"
	case ExtraLibrary:
		return "extra_library"
	case TopModule:
		return "topmodule"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

var patterns = map[Kind]*regexp.Regexp{
	Submodule:    regexp.MustCompile(`(?i)//!\s*submodule\s+(\w+)`),
	ExtraLibrary: regexp.MustCompile(`(?i)//!\s*extra_library\s+(\S+)`),
	TopModule:    regexp.MustCompile(`(?i)//!\s*topmodule\s+(\w+)`),
}

// Scan yields the token captured by directive k on each line, in order.
// Lines that do not carry the directive are skipped.
func Scan(lines iter.Seq[string], k Kind) iter.Seq[string] {
	re := patterns[k]
	return func(yield func(string) bool) {
		if re == nil {
			return
		}
		for line := range lines {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if !yield(m[1]) {
				return
			}
		}
	}
}

// ScanText is Scan over the lines of text.
func ScanText(text string, k Kind) iter.Seq[string] {
	return Scan(strings.Lines(text), k)
}

// ReadSource reads a whole source file from fsys.
func ReadSource(fsys billy.Basic, path string) (string, error) {
	data, err := util.ReadFile(fsys, path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FirstTopModule returns the first topmodule declared in text. A second
// declaration is logged as a warning against path and otherwise ignored.
func FirstTopModule(ctx context.Context, text, path string) (string, bool) {
	var (
		first string
		found bool
	)
	for name := range ScanText(text, TopModule) {
		if !found {
			first, found = name, true
			continue
		}
		logging.FromContext(ctx).Warn("multiple top modules declared; using the first",
			"path", path, "using", first, "ignored", name)
		break
	}
	return first, found
}

// FindTopModule reads path and returns its first topmodule declaration.
// A file that cannot be read is reported as declaring none.
func FindTopModule(ctx context.Context, fsys billy.Basic, path string) (string, bool) {
	text, err := ReadSource(fsys, path)
	if err != nil {
		logging.FromContext(ctx).Debug("cannot read source for topmodule scan", "path", path, "error", err)
		return "", false
	}
	return FirstTopModule(ctx, text, path)
}

// TopModules returns every distinct topmodule name declared in text, in
// declaration order.
func TopModules(text string) []string {
	seen := make(map[string]struct{})
	var names []string
	for name := range ScanText(text, TopModule) {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
