package target

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/dolly-hdl/dolly/internal/logging"
	"github.com/dolly-hdl/dolly/internal/module"
)

var sortTargets = cmpopts.SortSlices(func(a, b BuildTarget) bool { return a.Source < b.Source })

var layout = Layout{
	TestDir:    "/proj/tests",
	RootSource: "/proj/src/Soc.bsv",
}

func writeFiles(t *testing.T, fsys billy.Filesystem, files map[string]string) {
	t.Helper()
	for path, content := range files {
		if err := util.WriteFile(fsys, path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

func enumerate(t *testing.T, fsys billy.Filesystem) (*Set, string) {
	t.Helper()
	var logs bytes.Buffer
	ctx := logging.WithLogger(context.Background(), logging.New(slog.LevelWarn, &logs))

	g, err := module.Discover(ctx, fsys, module.Options{RootDir: "/proj/src", PackageName: "Soc"})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	set, err := Enumerate(ctx, fsys, g, layout)
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}
	return set, logs.String()
}

func TestIsUnitTest(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/proj/src/Uart_tb.bsv", true},
		{"Fifo_tb.bsv", true},
		{"/proj/src/Uart.bsv", false},
		{"/proj/src/Uart_tb.v", false},
		{"/proj/src/tb_Uart.bsv", false},
		{"/proj/src/Uart_tb.bsv.bak", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsUnitTest(tt.path); got != tt.want {
				t.Errorf("IsUnitTest(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestEnumerate_Classification(t *testing.T) {
	fsys := memfs.New()
	writeFiles(t, fsys, map[string]string{
		"/proj/src/Soc.bsv":          "//!submodule Uart\n//!topmodule mkSoc\n",
		"/proj/src/Uart/Uart.bsv":    "module mkUart(Empty); endmodule\n",
		"/proj/src/Uart/Uart_tb.bsv": "//!topmodule mkUart_tb\n",
		"/proj/src/Uart/notes.txt":   "not a source\n",
		"/proj/tests/Soc_tb.bsv":     "//!topmodule mkSoc_tb\n",
		"/proj/tests/Smoke.bsv":      "module mkTopModule(Empty); endmodule\n",
		"/proj/tests/README.md":      "docs\n",
	})
	if err := fsys.MkdirAll("/proj/tests/fixtures.bsv", 0o755); err != nil {
		t.Fatal(err)
	}

	set, _ := enumerate(t, fsys)

	wantUnit := []BuildTarget{
		{Kind: KindUnitTest, Source: "/proj/src/Uart/Uart_tb.bsv", TopModule: Declared("mkUart_tb")},
	}
	if diff := cmp.Diff(wantUnit, set.UnitTests, sortTargets, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("UnitTests mismatch (-want +got):\n%s", diff)
	}

	wantIntegration := []BuildTarget{
		{Kind: KindIntegrationTest, Source: "/proj/tests/Smoke.bsv"},
		{Kind: KindIntegrationTest, Source: "/proj/tests/Soc_tb.bsv", TopModule: Declared("mkSoc_tb")},
	}
	if diff := cmp.Diff(wantIntegration, set.IntegrationTests, sortTargets, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("IntegrationTests mismatch (-want +got):\n%s", diff)
	}

	wantTop := []BuildTarget{
		{Kind: KindTopLevel, Source: "/proj/src/Soc.bsv", TopModule: Declared("mkSoc")},
	}
	if diff := cmp.Diff(wantTop, set.TopLevel, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("TopLevel mismatch (-want +got):\n%s", diff)
	}
}

func TestEnumerate_SameFileDifferentPlace(t *testing.T) {
	fsys := memfs.New()
	tb := "//!topmodule mkFoo_tb\n"
	writeFiles(t, fsys, map[string]string{
		"/proj/src/Soc.bsv":        "//!submodule Foo\n",
		"/proj/src/Foo/Foo.bsv":    "",
		"/proj/src/Foo/Foo_tb.bsv": tb,
		"/proj/tests/Foo_tb.bsv":   tb,
	})

	set, _ := enumerate(t, fsys)
	if len(set.UnitTests) != 1 || set.UnitTests[0].Source != "/proj/src/Foo/Foo_tb.bsv" {
		t.Errorf("UnitTests = %+v, want only the module-local testbench", set.UnitTests)
	}
	if len(set.IntegrationTests) != 1 || set.IntegrationTests[0].Source != "/proj/tests/Foo_tb.bsv" {
		t.Errorf("IntegrationTests = %+v, want only the tests/ testbench", set.IntegrationTests)
	}
	if set.IntegrationTests[0].Kind != KindIntegrationTest {
		t.Errorf("Kind = %q, want %q", set.IntegrationTests[0].Kind, KindIntegrationTest)
	}
}

func TestEnumerate_TopModuleCardinality(t *testing.T) {
	fsys := memfs.New()
	writeFiles(t, fsys, map[string]string{
		"/proj/src/Soc.bsv":       "//!topmodule mkSoc\n",
		"/proj/tests/None_tb.bsv": "module mkTopModule(Empty); endmodule\n",
		"/proj/tests/One_tb.bsv":  "//!topmodule mkOne\n",
		"/proj/tests/Two_tb.bsv":  "//!topmodule mkFirst\n//!topmodule mkSecond\n",
	})

	set, logs := enumerate(t, fsys)

	got := make(map[string]TopModule)
	for _, tgt := range set.IntegrationTests {
		got[tgt.Stem()] = tgt.TopModule
	}
	want := map[string]TopModule{
		"None_tb": {},
		"One_tb":  Declared("mkOne"),
		"Two_tb":  Declared("mkFirst"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("top modules mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(logs, "multiple top modules") {
		t.Errorf("expected warning about multiple top modules, logs: %q", logs)
	}
	if got["None_tb"].Resolve("mkTopModule") != "mkTopModule" {
		t.Error("undeclared top module should resolve to the default")
	}
}

func TestEnumerate_TopLevelTargets(t *testing.T) {
	fsys := memfs.New()
	writeFiles(t, fsys, map[string]string{
		"/proj/src/Soc.bsv": "//!topmodule mkSoc\n//!topmodule mkSocFast\n//!topmodule mkSoc\n",
	})

	set, logs := enumerate(t, fsys)
	var names []string
	for _, tgt := range set.TopLevel {
		if tgt.Source != "/proj/src/Soc.bsv" {
			t.Errorf("top-level source = %q, want root source", tgt.Source)
		}
		names = append(names, tgt.Name())
	}
	if diff := cmp.Diff([]string{"mkSoc", "mkSocFast"}, names); diff != "" {
		t.Errorf("top-level names mismatch (-want +got):\n%s", diff)
	}
	if strings.Contains(logs, "no top modules") {
		t.Errorf("unexpected warning: %q", logs)
	}
}

func TestEnumerate_NoTopLevelWarns(t *testing.T) {
	fsys := memfs.New()
	writeFiles(t, fsys, map[string]string{
		"/proj/src/Soc.bsv": "module mkSoc(Empty); endmodule\n",
	})

	set, logs := enumerate(t, fsys)
	if len(set.TopLevel) != 0 {
		t.Errorf("TopLevel = %+v, want empty", set.TopLevel)
	}
	if !strings.Contains(logs, "no top modules declared") {
		t.Errorf("expected warning, logs: %q", logs)
	}
}

func TestEnumerate_MissingTestDirIsEmpty(t *testing.T) {
	fsys := memfs.New()
	writeFiles(t, fsys, map[string]string{"/proj/src/Soc.bsv": ""})

	set, _ := enumerate(t, fsys)
	if len(set.IntegrationTests) != 0 {
		t.Errorf("IntegrationTests = %+v, want empty", set.IntegrationTests)
	}
}

func TestEnumerate_MissingModuleDirIsFatal(t *testing.T) {
	fsys := memfs.New()
	writeFiles(t, fsys, map[string]string{"/proj/src/Soc.bsv": "//!submodule Ghost\n"})
	ctx := logging.WithLogger(context.Background(), logging.Discard())

	g, err := module.Discover(ctx, fsys, module.Options{RootDir: "/proj/src", PackageName: "Soc"})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	_, err = Enumerate(ctx, fsys, g, layout)
	if err == nil {
		t.Fatal("Enumerate() error = nil, want error for unreadable module directory")
	}
	if !strings.Contains(err.Error(), "/proj/src/Ghost") {
		t.Errorf("error %q should name the directory", err)
	}
}

type brokenTestsFS struct {
	billy.Filesystem
}

func (b brokenTestsFS) ReadDir(path string) ([]os.FileInfo, error) {
	if path == layout.TestDir {
		return nil, os.ErrPermission
	}
	return b.Filesystem.ReadDir(path)
}

func TestEnumerate_UnreadableTestDirIsFatal(t *testing.T) {
	fsys := memfs.New()
	writeFiles(t, fsys, map[string]string{
		"/proj/src/Soc.bsv":      "",
		"/proj/tests/Foo_tb.bsv": "",
	})
	ctx := logging.WithLogger(context.Background(), logging.Discard())
	wrapped := brokenTestsFS{fsys}

	g, err := module.Discover(ctx, wrapped, module.Options{RootDir: "/proj/src", PackageName: "Soc"})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if _, err := Enumerate(ctx, wrapped, g, layout); !errors.Is(err, os.ErrPermission) {
		t.Errorf("Enumerate() error = %v, want permission error", err)
	}
}

func TestEnumerate_ExtraLibrariesAttached(t *testing.T) {
	fsys := memfs.New()
	writeFiles(t, fsys, map[string]string{
		"/proj/src/Soc.bsv":      "//!extra_library ../c/model.c\n",
		"/proj/c/model.c":        "",
		"/proj/tests/Soc_tb.bsv": "",
	})

	set, _ := enumerate(t, fsys)
	if len(set.IntegrationTests) != 1 {
		t.Fatalf("IntegrationTests = %+v, want 1", set.IntegrationTests)
	}
	if diff := cmp.Diff([]string{"/proj/c/model.c"}, set.IntegrationTests[0].ExtraLibraries); diff != "" {
		t.Errorf("ExtraLibraries mismatch (-want +got):\n%s", diff)
	}
}

func TestEnumerate_Idempotent(t *testing.T) {
	fsys := memfs.New()
	writeFiles(t, fsys, map[string]string{
		"/proj/src/Soc.bsv":          "//!submodule Uart\n//!topmodule mkSoc\n",
		"/proj/src/Uart/Uart.bsv":    "",
		"/proj/src/Uart/Uart_tb.bsv": "//!topmodule mkUart_tb\n",
		"/proj/tests/Soc_tb.bsv":     "",
	})

	first, _ := enumerate(t, fsys)
	second, _ := enumerate(t, fsys)
	if diff := cmp.Diff(first, second, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("second enumeration differs (-first +second):\n%s", diff)
	}
}

func TestSet_TestsOrder(t *testing.T) {
	set := &Set{
		UnitTests:        []BuildTarget{{Source: "/a/U1_tb.bsv"}, {Source: "/a/U2_tb.bsv"}},
		IntegrationTests: []BuildTarget{{Source: "/t/I1.bsv"}},
		TopLevel:         []BuildTarget{{Source: "/a/Soc.bsv"}},
	}
	var got []string
	for _, tgt := range set.Tests() {
		got = append(got, tgt.Stem())
	}
	if diff := cmp.Diff([]string{"U1_tb", "U2_tb", "I1"}, got); diff != "" {
		t.Errorf("Tests() order mismatch (-want +got):\n%s", diff)
	}
}
