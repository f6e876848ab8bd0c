// Package module discovers the set of BSV modules reachable from a project's
// source root by following //!submodule directives.
package module

import (
	"context"
	"path/filepath"

	"github.com/go-git/go-billy/v5"

	"github.com/dolly-hdl/dolly/internal/directive"
	"github.com/dolly-hdl/dolly/internal/errors"
	"github.com/dolly-hdl/dolly/internal/fsutil"
	"github.com/dolly-hdl/dolly/internal/logging"
)

// SourceExt is the file extension of BSV sources.
const SourceExt = ".bsv"

// Options locates the traversal root.
type Options struct {
	// RootDir is the project's source directory (<root>/src).
	RootDir string
	// PackageName names the root directory's definition file (<RootDir>/<PackageName>.bsv).
	PackageName string
}

// Graph is the result of discovery: the reachable module directories and the
// extra libraries they reference. Edges are not retained; the toolchain only
// needs a search path.
type Graph struct {
	modules        []string
	extraLibraries []string
	index          map[string]struct{}
}

// Modules returns module directories in discovery order.
func (g *Graph) Modules() []string {
	return append([]string(nil), g.modules...)
}

// ExtraLibraries returns canonical extra-library paths in discovery order.
func (g *Graph) ExtraLibraries() []string {
	return append([]string(nil), g.extraLibraries...)
}

// Contains reports whether dir was discovered as a module. Module paths are
// stored with symlinks resolved, so dir must be canonical as well; pass
// user-supplied paths through fsutil.Canonicalize first.
func (g *Graph) Contains(dir string) bool {
	_, ok := g.index[filepath.Clean(dir)]
	return ok
}

// Len returns the number of discovered modules.
func (g *Graph) Len() int {
	return len(g.modules)
}

// DefinitionFile returns the module-definition source of a submodule named
// name that lives in dir.
func DefinitionFile(dir, name string) string {
	return filepath.Join(dir, name+SourceExt)
}

// pending is a worklist entry. defs lists candidate definition files in
// lookup order: the submodule as referenced, then the base name of its
// canonical directory. They differ when the reference is a symlink whose name
// is not the name of its target.
type pending struct {
	dir  string
	defs []string
}

func newPending(dir, name string) pending {
	p := pending{dir: dir, defs: []string{DefinitionFile(dir, name)}}
	if base := filepath.Base(dir); base != name {
		p.defs = append(p.defs, DefinitionFile(dir, base))
	}
	return p
}

// Discover walks submodule directives from opts.RootDir using a stack.
//
// A directory is marked visited before its directives are expanded and only
// unvisited directories are pushed, so cyclic references terminate; back
// references are dropped without a diagnostic. A directory without a
// definition file contributes no submodules. A definition file that exists
// but cannot be read aborts discovery.
func Discover(ctx context.Context, fsys billy.Filesystem, opts Options) (*Graph, error) {
	log := logging.FromContext(ctx)

	g := &Graph{index: make(map[string]struct{})}
	libs := make(map[string]struct{})

	root := canonicalDir(fsys, opts.RootDir)
	stack := []pending{{dir: root, defs: []string{DefinitionFile(root, opts.PackageName)}}}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := g.index[current.dir]; seen {
			continue
		}
		g.index[current.dir] = struct{}{}
		g.modules = append(g.modules, current.dir)
		log.Debug("processing module", "path", current.dir)

		def, text, ok, err := readDefinition(fsys, current.defs)
		if err != nil {
			return nil, err
		}
		if !ok {
			log.Debug("module has no definition file", "path", current.dir, "expected", current.defs)
			continue
		}

		for name := range directive.ScanText(text, directive.Submodule) {
			dir := canonicalDir(fsys, filepath.Join(current.dir, name))
			sub := newPending(dir, name)
			if _, seen := g.index[sub.dir]; seen {
				continue
			}
			stack = append(stack, sub)
		}

		for ref := range directive.ScanText(text, directive.ExtraLibrary) {
			lib := ref
			if !filepath.IsAbs(lib) {
				lib = filepath.Join(current.dir, lib)
			}
			canonical, err := fsutil.Canonicalize(fsys, lib)
			if err != nil {
				return nil, errors.Wrap(err, "resolving extra library "+ref+" of "+def)
			}
			if _, dup := libs[canonical]; dup {
				continue
			}
			libs[canonical] = struct{}{}
			g.extraLibraries = append(g.extraLibraries, canonical)
			log.Debug("extra library found", "path", canonical, "module", current.dir)
		}
	}

	return g, nil
}

// canonicalDir resolves symlinks in dir so that aliases of one directory
// collapse. Directories that do not exist keep their cleaned spelling.
func canonicalDir(fsys billy.Filesystem, dir string) string {
	if c, err := fsutil.Canonicalize(fsys, dir); err == nil {
		return c
	}
	return filepath.Clean(dir)
}

// readDefinition reads the first candidate that exists and returns its path
// and text, or ok=false when none does.
func readDefinition(fsys billy.Filesystem, candidates []string) (string, string, bool, error) {
	for _, path := range candidates {
		exists, err := fsutil.Exists(fsys, path)
		if err != nil {
			return "", "", false, errors.Wrap(err, "reading module definition")
		}
		if !exists {
			continue
		}
		text, err := directive.ReadSource(fsys, path)
		if err != nil {
			return "", "", false, errors.Wrap(err, "reading module definition "+path)
		}
		return path, text, true, nil
	}
	return "", "", false, nil
}
