// Package toolchain builds argument lists for the Bluespec bsc compiler.
//
// bsc is used in three modes: compiling a source for simulation (-sim -u -g),
// linking a simulation executable (-sim -e -o), and translating a source to
// Verilog (-verilog -u -g). All intermediates for one target go into a single
// artifact directory.
package toolchain

import (
	"runtime"
	"strings"
)

const (
	// DefaultBinary is the compiler executable looked up in PATH.
	DefaultBinary = "bsc"
	// DefaultLibraryRoot is bsc's placeholder for its bundled library directory.
	DefaultLibraryRoot = "%/Libraries"
	// DefaultTopModule is elaborated when a source declares no topmodule.
	DefaultTopModule = "mkTopModule"
	// EnvBinary overrides the compiler executable.
	EnvBinary = "DOLLY_BSC"
)

// searchPathSep separates bsc -p entries on every platform.
const searchPathSep = ":"

// Toolchain describes how to invoke bsc.
type Toolchain struct {
	Binary          string
	LibraryRoot     string
	Quiet           bool
	CheckAssertions bool
	CompileFlags    []string
	LinkFlags       []string

	// GOOS selects platform-specific flags. Empty means runtime.GOOS.
	GOOS string
}

// Default returns the toolchain used when dolly.toml configures nothing.
func Default() Toolchain {
	return Toolchain{
		Binary:          DefaultBinary,
		LibraryRoot:     DefaultLibraryRoot,
		Quiet:           true,
		CheckAssertions: true,
	}
}

func (tc Toolchain) goos() string {
	if tc.GOOS != "" {
		return tc.GOOS
	}
	return runtime.GOOS
}

func (tc Toolchain) binary() string {
	if tc.Binary != "" {
		return tc.Binary
	}
	return DefaultBinary
}

// Name returns the executable that will be spawned.
func (tc Toolchain) Name() string {
	return tc.binary()
}

// SearchPath joins the library root and every module directory, in order,
// into a bsc -p value.
func SearchPath(libraryRoot string, modules []string) string {
	if libraryRoot == "" {
		libraryRoot = DefaultLibraryRoot
	}
	parts := make([]string, 0, len(modules)+1)
	parts = append(parts, libraryRoot)
	parts = append(parts, modules...)
	return strings.Join(parts, searchPathSep)
}

// SearchPath builds the -p value from the configured library root.
func (tc Toolchain) SearchPath(modules []string) string {
	return SearchPath(tc.LibraryRoot, modules)
}

func (tc Toolchain) commonFlags() []string {
	var flags []string
	if tc.Quiet {
		flags = append(flags, "-q")
	}
	if tc.CheckAssertions {
		flags = append(flags, "-check-assert")
	}
	return flags
}

// CompileArgs returns the arguments that compile source for simulation with
// top as the elaboration target.
func (tc Toolchain) CompileArgs(artifactDir, searchPath, top, source string) []string {
	args := []string{
		"-u", "-sim",
		"-bdir", artifactDir,
		"-info-dir", artifactDir,
		"-simdir", artifactDir,
		"-p", searchPath,
		"-g", top,
	}
	args = append(args, tc.commonFlags()...)
	args = append(args, tc.CompileFlags...)
	return append(args, source)
}

// LinkArgs returns the arguments that link the simulation executable output
// for top, appending extra libraries as trailing sources.
func (tc Toolchain) LinkArgs(artifactDir, top, output string, extraLibraries []string) []string {
	args := []string{
		"-sim",
		"-e", top,
		"-bdir", artifactDir,
		"-info-dir", artifactDir,
		"-simdir", artifactDir,
		"-fdir", artifactDir,
		"-o", output,
	}
	if tc.Quiet {
		args = append(args, "-q")
	}
	if tc.goos() != "windows" {
		// Generated C++ trips these on recent GCC and Clang.
		args = append(args, "-Xc++", "-Wno-dangling-else", "-Xc++", "-Wno-bool-operation")
	}
	args = append(args, tc.LinkFlags...)
	return append(args, extraLibraries...)
}

// VerilogArgs returns the arguments that translate top in source to Verilog.
func (tc Toolchain) VerilogArgs(artifactDir, searchPath, top, source string) []string {
	args := []string{
		"-u", "-verilog",
		"-bdir", artifactDir,
		"-info-dir", artifactDir,
		"-vdir", artifactDir,
		"-p", searchPath,
		"-g", top,
	}
	args = append(args, tc.commonFlags()...)
	args = append(args, tc.CompileFlags...)
	return append(args, source)
}

// RunCommand returns the program and arguments that execute a linked
// simulation named exe from within its artifact directory.
func (tc Toolchain) RunCommand(exe string) (string, []string) {
	if tc.goos() == "windows" {
		return "cmd", []string{"/C", exe}
	}
	return "sh", []string{"-c", "./" + exe}
}
