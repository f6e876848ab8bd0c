// Package project provides project discovery, loading and scaffolding.
package project

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"

	"github.com/dolly-hdl/dolly/internal/errors"
	"github.com/dolly-hdl/dolly/internal/fsutil"
)

// FileName is the project descriptor that marks a project root.
const FileName = "dolly.toml"

// Directory layout below the project root.
const (
	SrcDirName    = "src"
	TestsDirName  = "tests"
	TargetDirName = "target"
)

// ErrNoProjectRoot is returned when no dolly.toml is found.
var ErrNoProjectRoot = &errors.DollyError{
	Kind:    errors.KindNotFound,
	Message: "dolly.toml not found: not a dolly project (or any parent up to the root)",
}

// FindRoot walks up from the current working directory until it finds dolly.toml.
func FindRoot(fsys billy.Filesystem) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindRootFrom(fsys, cwd)
}

// FindRootFrom walks up from the given directory until it finds dolly.toml.
// The start directory is canonicalized first, so the returned root never
// contains symbolic links.
func FindRootFrom(fsys billy.Filesystem, startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	if dir, err = fsutil.Canonicalize(fsys, dir); err != nil {
		return "", errors.Wrap(err, "resolving start directory")
	}

	for {
		descriptor := filepath.Join(dir, FileName)
		fi, err := fsys.Stat(descriptor)
		switch {
		case err == nil && fi.IsDir():
			return "", errors.Configf("%s is not a regular file", descriptor)
		case err == nil:
			return dir, nil
		case !os.IsNotExist(err):
			return "", errors.Wrap(err, "searching for "+FileName)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", ErrNoProjectRoot
		}
		dir = parent
	}
}
