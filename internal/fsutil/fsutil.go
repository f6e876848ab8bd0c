// Package fsutil adapts go-billy filesystems for dolly: a native filesystem
// that accepts absolute host paths, plus helpers shared by discovery code.
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// maxLinkHops bounds symlink resolution, matching the kernel's ELOOP limit.
const maxLinkHops = 255

// ErrTooManyLinks is returned when symlink resolution does not settle.
var ErrTooManyLinks = errors.New("too many levels of symbolic links")

// nativeFS is a billy.Filesystem over the host filesystem that takes paths
// verbatim instead of joining them below a base directory.
type nativeFS struct {
	osfs.ChrootOS
}

// Chroot returns a new filesystem rooted at the provided path.
//
//nolint:ireturn // billy.Filesystem is an interface; signature is dictated by upstream.
func (n *nativeFS) Chroot(path string) (billy.Filesystem, error) {
	return osfs.New(path), nil
}

// Root returns the root path for this filesystem.
func (n *nativeFS) Root() string {
	return string(filepath.Separator)
}

// Native returns the host filesystem addressed by absolute paths.
//
//nolint:ireturn // callers program against billy.Filesystem.
func Native() billy.Filesystem {
	return &nativeFS{}
}

// Exists reports whether path exists. Errors other than "not exist" are returned.
func Exists(fsys billy.Basic, path string) (bool, error) {
	_, err := fsys.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fmt.Errorf("stat %q: %w", path, err)
	}
}

// Canonicalize resolves every symbolic link in path and returns a cleaned
// result. Every component must exist.
func Canonicalize(fsys billy.Filesystem, path string) (string, error) {
	sep := string(filepath.Separator)
	vol := filepath.VolumeName(path)
	rest := path[len(vol):]

	dest := vol
	if strings.HasPrefix(rest, sep) {
		dest = vol + sep
	}

	hops := 0
	for rest != "" {
		var comp string
		comp, rest, _ = strings.Cut(rest, sep)

		switch comp {
		case "", ".":
			continue
		case "..":
			dest = filepath.Dir(dest)
			continue
		}

		candidate := filepath.Join(dest, comp)
		if dest == "" {
			candidate = comp
		}
		info, err := fsys.Lstat(candidate)
		if err != nil {
			return "", fmt.Errorf("canonicalize %q: %w", path, err)
		}
		if info.Mode()&os.ModeSymlink == 0 {
			dest = candidate
			continue
		}

		hops++
		if hops > maxLinkHops {
			return "", fmt.Errorf("canonicalize %q: %w", path, ErrTooManyLinks)
		}
		link, err := fsys.Readlink(candidate)
		if err != nil {
			return "", fmt.Errorf("canonicalize %q: %w", path, err)
		}
		if filepath.IsAbs(link) {
			lv := filepath.VolumeName(link)
			dest = lv + sep
			link = link[len(lv):]
		}
		if rest == "" {
			rest = link
		} else {
			rest = link + sep + rest
		}
	}

	return filepath.Clean(dest), nil
}
