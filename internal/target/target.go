// Package target enumerates the build and test targets of a dolly project.
package target

import (
	"path/filepath"
	"strings"
)

// Kind classifies a target by where it was found.
type Kind string

const (
	// KindUnitTest is a *_tb.bsv file inside a module directory.
	KindUnitTest Kind = "unit"
	// KindIntegrationTest is any .bsv file in the project's tests directory.
	KindIntegrationTest Kind = "integration"
	// KindTopLevel is a topmodule declared in the project's root source file.
	KindTopLevel Kind = "top"
)

// TopModule is the elaboration entry point declared by a source file. The
// zero value means no declaration was found; the default name is applied by
// the pipeline, never here.
type TopModule struct {
	Name     string
	Declared bool
}

// Declared returns a TopModule for an explicit declaration.
func Declared(name string) TopModule {
	return TopModule{Name: name, Declared: true}
}

// Resolve returns the declared name, or def when none was declared.
func (m TopModule) Resolve(def string) string {
	if m.Declared {
		return m.Name
	}
	return def
}

func (m TopModule) String() string {
	if !m.Declared {
		return "(default)"
	}
	return m.Name
}

// BuildTarget is one unit of pipeline work.
type BuildTarget struct {
	Kind           Kind      `json:"kind" yaml:"kind"`
	Source         string    `json:"source" yaml:"source"`
	TopModule      TopModule `json:"-" yaml:"-"`
	ExtraLibraries []string  `json:"extra_libraries,omitempty" yaml:"extra_libraries,omitempty"`
}

// Stem returns the source file name without extension. Artifact directories
// are keyed by it.
func (t BuildTarget) Stem() string {
	base := filepath.Base(t.Source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Name identifies the target in progress output. Top-level targets share a
// source file, so they are named after their top module instead.
func (t BuildTarget) Name() string {
	if t.Kind == KindTopLevel && t.TopModule.Declared {
		return t.TopModule.Name
	}
	return t.Stem()
}

// Set holds every target discovered in a project, each slice in discovery order.
type Set struct {
	UnitTests        []BuildTarget `json:"unit_tests" yaml:"unit_tests"`
	IntegrationTests []BuildTarget `json:"integration_tests" yaml:"integration_tests"`
	TopLevel         []BuildTarget `json:"top_level" yaml:"top_level"`
}

// Tests returns unit tests followed by integration tests, the order in which
// the test pipeline runs them.
func (s *Set) Tests() []BuildTarget {
	tests := make([]BuildTarget, 0, len(s.UnitTests)+len(s.IntegrationTests))
	tests = append(tests, s.UnitTests...)
	return append(tests, s.IntegrationTests...)
}
