package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	dollyerrors "github.com/dolly-hdl/dolly/internal/errors"
	"github.com/dolly-hdl/dolly/internal/fsutil"
	"github.com/dolly-hdl/dolly/internal/module"
	"github.com/dolly-hdl/dolly/internal/toolchain"
)

const minimalDescriptor = "[package]\nname = \"Counter\"\nversion = \"0.1.0\"\n"

func writeFile(t *testing.T, fsys billy.Filesystem, path, content string) {
	t.Helper()
	if err := util.WriteFile(fsys, path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindRootFrom_Found(t *testing.T) {
	fsys := memfs.New()
	writeFile(t, fsys, "/work/counter/dolly.toml", minimalDescriptor)

	found, err := FindRootFrom(fsys, "/work/counter")
	if err != nil {
		t.Fatalf("FindRootFrom() error = %v", err)
	}
	if found != "/work/counter" {
		t.Errorf("FindRootFrom() = %q, want %q", found, "/work/counter")
	}
}

func TestFindRootFrom_FoundFromSubdir(t *testing.T) {
	fsys := memfs.New()
	writeFile(t, fsys, "/work/counter/dolly.toml", minimalDescriptor)
	if err := fsys.MkdirAll("/work/counter/src/Fifo/deep", 0o755); err != nil {
		t.Fatal(err)
	}

	found, err := FindRootFrom(fsys, "/work/counter/src/Fifo/deep")
	if err != nil {
		t.Fatalf("FindRootFrom() error = %v", err)
	}
	if found != "/work/counter" {
		t.Errorf("FindRootFrom() = %q, want %q", found, "/work/counter")
	}
}

func TestFindRootFrom_NearestWins(t *testing.T) {
	fsys := memfs.New()
	writeFile(t, fsys, "/work/dolly.toml", minimalDescriptor)
	writeFile(t, fsys, "/work/inner/dolly.toml", minimalDescriptor)

	found, err := FindRootFrom(fsys, "/work/inner")
	if err != nil {
		t.Fatalf("FindRootFrom() error = %v", err)
	}
	if found != "/work/inner" {
		t.Errorf("FindRootFrom() = %q, want /work/inner", found)
	}
}

func TestFindRootFrom_NotFound(t *testing.T) {
	fsys := memfs.New()
	if err := fsys.MkdirAll("/work/empty", 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := FindRootFrom(fsys, "/work/empty")
	if !errors.Is(err, ErrNoProjectRoot) {
		t.Errorf("FindRootFrom() error = %v, want ErrNoProjectRoot", err)
	}
}

func TestFindRootFrom_DescriptorIsDirectory(t *testing.T) {
	fsys := memfs.New()
	if err := fsys.MkdirAll("/work/dolly.toml", 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := FindRootFrom(fsys, "/work")
	if got := dollyerrors.GetExitCode(err); got != dollyerrors.ExitConfigError {
		t.Errorf("FindRootFrom() error = %v (exit %d), want config error", err, got)
	}
}

func TestFindRootFrom_ThroughSymlink(t *testing.T) {
	fsys := memfs.New()
	writeFile(t, fsys, "/real/counter/dolly.toml", minimalDescriptor)
	if err := fsys.Symlink("/real/counter", "/links/counter"); err != nil {
		t.Fatal(err)
	}

	found, err := FindRootFrom(fsys, "/links/counter")
	if err != nil {
		t.Fatalf("FindRootFrom() error = %v", err)
	}
	if found != "/real/counter" {
		t.Errorf("FindRootFrom() = %q, want canonical /real/counter", found)
	}
}

func TestFindRootFrom_HostFilesystem(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, FileName), []byte(minimalDescriptor), 0o644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(root, "src")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	found, err := FindRootFrom(fsutil.Native(), sub)
	if err != nil {
		t.Fatalf("FindRootFrom() error = %v", err)
	}
	if found != root {
		t.Errorf("FindRootFrom() = %q, want %q", found, root)
	}
}

func TestLoadFrom_Layout(t *testing.T) {
	fsys := memfs.New()
	writeFile(t, fsys, "/work/counter/dolly.toml", minimalDescriptor)

	proj, err := LoadFrom(fsys, "/work/counter")
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	checks := map[string]string{
		"Name":             proj.Name(),
		"ConfigPath":       proj.ConfigPath(),
		"SrcDir":           proj.SrcDir(),
		"TestsDir":         proj.TestsDir(),
		"TargetDir":        proj.TargetDir(),
		"RootSource":       proj.RootSource(),
		"DefaultTopModule": proj.DefaultTopModule(),
	}
	want := map[string]string{
		"Name":             "Counter",
		"ConfigPath":       "/work/counter/dolly.toml",
		"SrcDir":           "/work/counter/src",
		"TestsDir":         "/work/counter/tests",
		"TargetDir":        "/work/counter/target",
		"RootSource":       "/work/counter/src/Counter.bsv",
		"DefaultTopModule": toolchain.DefaultTopModule,
	}
	for k, v := range want {
		if checks[k] != v {
			t.Errorf("%s() = %q, want %q", k, checks[k], v)
		}
	}

	opts := proj.ModuleOptions()
	if opts.RootDir != "/work/counter/src" || opts.PackageName != "Counter" {
		t.Errorf("ModuleOptions() = %+v", opts)
	}
	layout := proj.Layout()
	if layout.TestDir != "/work/counter/tests" || layout.RootSource != "/work/counter/src/Counter.bsv" {
		t.Errorf("Layout() = %+v", layout)
	}
}

func TestLoadFrom_InvalidDescriptor(t *testing.T) {
	fsys := memfs.New()
	writeFile(t, fsys, "/work/bad/dolly.toml", "[package]\nname = \"Counter\"\n")

	_, err := LoadFrom(fsys, "/work/bad")
	if err == nil {
		t.Fatal("LoadFrom() error = nil")
	}
	if got := dollyerrors.GetExitCode(err); got != dollyerrors.ExitConfigError {
		t.Errorf("GetExitCode() = %d, want %d", got, dollyerrors.ExitConfigError)
	}
}

func TestToolchain_EnvOverride(t *testing.T) {
	fsys := memfs.New()
	writeFile(t, fsys, "/p/dolly.toml", minimalDescriptor+"\n[toolchain]\nbsc = \"/opt/bsc/bin/bsc\"\n")
	proj, err := LoadFrom(fsys, "/p")
	if err != nil {
		t.Fatal(err)
	}

	t.Setenv(toolchain.EnvBinary, "")
	if got := proj.Toolchain().Binary; got != "/opt/bsc/bin/bsc" {
		t.Errorf("Binary = %q, want value from dolly.toml", got)
	}

	t.Setenv(toolchain.EnvBinary, "/tmp/fake-bsc")
	if got := proj.Toolchain().Binary; got != "/tmp/fake-bsc" {
		t.Errorf("Binary = %q, want DOLLY_BSC override", got)
	}
}

func TestRunnerConfig(t *testing.T) {
	fsys := memfs.New()
	writeFile(t, fsys, "/p/dolly.toml", minimalDescriptor+"\n[build]\ndefault_top_module = \"mkBench\"\n")
	writeFile(t, fsys, "/p/src/Counter.bsv", "//! submodule Fifo\n")
	writeFile(t, fsys, "/p/src/Fifo/Fifo.bsv", "")

	proj, err := LoadFrom(fsys, "/p")
	if err != nil {
		t.Fatal(err)
	}
	graph, err := module.Discover(context.Background(), fsys, proj.ModuleOptions())
	if err != nil {
		t.Fatal(err)
	}

	cfg := proj.RunnerConfig(graph)
	if cfg.ArtifactRoot != "/p/target" || cfg.DefaultTopModule != "mkBench" {
		t.Errorf("RunnerConfig() = %+v", cfg)
	}
	if len(cfg.Modules) != 2 || cfg.Modules[0] != "/p/src" {
		t.Errorf("Modules = %v, want root module first", cfg.Modules)
	}
}

func TestClean(t *testing.T) {
	fsys := memfs.New()
	writeFile(t, fsys, "/p/dolly.toml", minimalDescriptor)
	writeFile(t, fsys, "/p/target/Counter_tb/Counter_tb", "binary")
	writeFile(t, fsys, "/p/src/Counter.bsv", "")

	proj, err := LoadFrom(fsys, "/p")
	if err != nil {
		t.Fatal(err)
	}

	proj.Clean(context.Background(), fsys)
	if ok, _ := fsutil.Exists(fsys, "/p/target"); ok {
		t.Error("target directory still exists after Clean")
	}
	if ok, _ := fsutil.Exists(fsys, "/p/src/Counter.bsv"); !ok {
		t.Error("Clean removed sources")
	}

	// A second clean has nothing to remove and must not panic.
	proj.Clean(context.Background(), fsys)
}

func TestPackageName(t *testing.T) {
	tests := map[string]string{
		"counter":          "Counter",
		"my-fifo":          "MyFifo",
		"my_fifo":          "MyFifo",
		"/work/axi stream": "AxiStream",
		"uartRx":           "UartRx",
		"MyFIFO":           "MyFifo",
		"core.v2":          "Core",
		"ddr4-phy":         "Ddr4Phy",
	}
	for in, want := range tests {
		if got := PackageName(in); got != want {
			t.Errorf("PackageName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInit_CreatesProject(t *testing.T) {
	fsys := memfs.New()

	created, err := Init(fsys, "/work/my-counter")
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	want := []string{"dolly.toml", ".gitignore", "src/MyCounter.bsv", "tests/MyCounter_tb.bsv"}
	if strings.Join(created, ",") != strings.Join(want, ",") {
		t.Errorf("Init() created %v, want %v", created, want)
	}

	proj, err := LoadFrom(fsys, "/work/my-counter")
	if err != nil {
		t.Fatalf("LoadFrom(initialized) error = %v", err)
	}
	if proj.Name() != "MyCounter" || proj.Config.Package.Version != "0.1.0" {
		t.Errorf("Package = %+v", proj.Config.Package)
	}

	gitignore, _ := util.ReadFile(fsys, "/work/my-counter/.gitignore")
	if string(gitignore) != "**/target\n" {
		t.Errorf(".gitignore = %q", gitignore)
	}

	tb, err := util.ReadFile(fsys, "/work/my-counter/tests/MyCounter_tb.bsv")
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"//!topmodule mkMyCounter_tb", "import MyCounter::*;", `$display(">>>PASS")`} {
		if !strings.Contains(string(tb), s) {
			t.Errorf("testbench missing %q:\n%s", s, tb)
		}
	}

	src, err := util.ReadFile(fsys, "/work/my-counter/src/MyCounter.bsv")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(src), "module mkMyCounter(MyCounter);") {
		t.Errorf("module source:\n%s", src)
	}
}

func TestInit_ExistingDirectory(t *testing.T) {
	fsys := memfs.New()
	if err := fsys.MkdirAll("/work/taken", 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := Init(fsys, "/work/taken")
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("Init() error = %v, want already exists", err)
	}
	entries, _ := fsys.ReadDir("/work/taken")
	if len(entries) != 0 {
		t.Errorf("Init() wrote into an existing directory: %d entries", len(entries))
	}
}

func TestInit_UnusableName(t *testing.T) {
	fsys := memfs.New()

	_, err := Init(fsys, "/work/42")
	if got := dollyerrors.GetExitCode(err); got != dollyerrors.ExitConfigError {
		t.Errorf("Init() error = %v (exit %d), want config error", err, got)
	}
}
