package target

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/dolly-hdl/dolly/internal/directive"
	"github.com/dolly-hdl/dolly/internal/errors"
	"github.com/dolly-hdl/dolly/internal/logging"
	"github.com/dolly-hdl/dolly/internal/module"
)

// UnitTestSuffix marks a source stem inside a module directory as a unit test.
const UnitTestSuffix = "_tb"

// Layout holds the project locations discovery reads besides module directories.
type Layout struct {
	TestDir    string // <root>/tests
	RootSource string // <root>/src/<package>.bsv
}

// Enumerate lists unit tests in every module directory, integration tests in
// layout.TestDir, and top-level targets declared in layout.RootSource.
//
// Failing to list a module directory or the test directory aborts discovery.
// Failing to read an individual file only means it declares no top module.
func Enumerate(ctx context.Context, fsys billy.Filesystem, graph *module.Graph, layout Layout) (*Set, error) {
	log := logging.FromContext(ctx)
	libs := graph.ExtraLibraries()
	set := &Set{}

	for _, dir := range graph.Modules() {
		sources, err := listSources(fsys, dir)
		if err != nil {
			return nil, errors.Wrap(err, "listing module directory "+dir)
		}
		for _, src := range sources {
			if !IsUnitTest(src) {
				continue
			}
			t := newTestTarget(ctx, fsys, KindUnitTest, src, libs)
			log.Debug("unit test found", "path", src, "topmodule", t.TopModule.String())
			set.UnitTests = append(set.UnitTests, t)
		}
	}

	sources, err := listSources(fsys, layout.TestDir)
	switch {
	case os.IsNotExist(err):
		log.Debug("no tests directory", "path", layout.TestDir)
	case err != nil:
		return nil, errors.Wrap(err, "listing tests directory "+layout.TestDir)
	}
	for _, src := range sources {
		t := newTestTarget(ctx, fsys, KindIntegrationTest, src, libs)
		log.Debug("integration test found", "path", src, "topmodule", t.TopModule.String())
		set.IntegrationTests = append(set.IntegrationTests, t)
	}

	set.TopLevel = topLevelTargets(ctx, fsys, layout.RootSource, libs)
	return set, nil
}

// IsUnitTest reports whether path names a BSV source whose stem carries the
// unit-test suffix.
func IsUnitTest(path string) bool {
	base := filepath.Base(path)
	if filepath.Ext(base) != module.SourceExt {
		return false
	}
	return strings.HasSuffix(strings.TrimSuffix(base, module.SourceExt), UnitTestSuffix)
}

func newTestTarget(ctx context.Context, fsys billy.Filesystem, kind Kind, src string, libs []string) BuildTarget {
	t := BuildTarget{
		Kind:           kind,
		Source:         src,
		ExtraLibraries: append([]string(nil), libs...),
	}
	if name, ok := directive.FindTopModule(ctx, fsys, src); ok {
		t.TopModule = Declared(name)
	}
	return t
}

func topLevelTargets(ctx context.Context, fsys billy.Filesystem, rootSource string, libs []string) []BuildTarget {
	log := logging.FromContext(ctx)

	text, err := directive.ReadSource(fsys, rootSource)
	if err != nil {
		log.Debug("cannot read root source", "path", rootSource, "error", err)
	}
	names := directive.TopModules(text)
	if len(names) == 0 {
		log.Warn("no top modules declared in root source", "path", rootSource)
		return nil
	}

	targets := make([]BuildTarget, 0, len(names))
	for _, name := range names {
		targets = append(targets, BuildTarget{
			Kind:           KindTopLevel,
			Source:         rootSource,
			TopModule:      Declared(name),
			ExtraLibraries: append([]string(nil), libs...),
		})
	}
	return targets
}

// listSources returns the BSV files directly inside dir.
func listSources(fsys billy.Filesystem, dir string) ([]string, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var sources []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != module.SourceExt {
			continue
		}
		sources = append(sources, filepath.Join(dir, entry.Name()))
	}
	return sources, nil
}
