package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/dolly-hdl/dolly/internal/errors"
	"github.com/dolly-hdl/dolly/internal/logging"
	"github.com/dolly-hdl/dolly/internal/module"
	"github.com/dolly-hdl/dolly/internal/project"
	"github.com/dolly-hdl/dolly/internal/runner"
	"github.com/dolly-hdl/dolly/internal/target"
)

// Help text alignment widths for consistent formatting.
const (
	helpFlagWidth    = 20
	helpCommandWidth = 12
)

// newFlagSet returns a flag set that reports errors to the caller instead of
// printing them.
func newFlagSet(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.SortFlags = false
	return flags
}

// parseCommandFlags parses args and rejects positional arguments.
func parseCommandFlags(cmd string, flags *pflag.FlagSet, args []string) bool {
	if err := flags.Parse(args); err != nil {
		out.ErrorPrefix("%s: %v", cmd, err)
		return false
	}
	if flags.NArg() > 0 {
		out.ErrorPrefix("%s: unexpected argument %q", cmd, flags.Arg(0))
		return false
	}
	return true
}

// loadProject finds and loads the project enclosing path and handles errors
// uniformly. It returns nil and the exit code on failure.
func loadProject(path string) (*project.Project, int) {
	root, err := project.FindRootFrom(hostFS, path)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return nil, errors.GetExitCode(err)
	}
	proj, err := project.LoadFrom(hostFS, root)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return nil, errors.GetExitCode(err)
	}
	return proj, errors.ExitSuccess
}

// discover builds the module graph and enumerates targets for proj.
func discover(ctx context.Context, proj *project.Project) (*module.Graph, *target.Set, error) {
	log := logging.FromContext(ctx)

	graph, err := module.Discover(ctx, hostFS, proj.ModuleOptions())
	if err != nil {
		return nil, nil, err
	}
	log.Debug("discovered module graph",
		"modules", graph.Modules(),
		"extra_libraries", graph.ExtraLibraries())

	set, err := target.Enumerate(ctx, hostFS, graph, proj.Layout())
	if err != nil {
		return nil, nil, err
	}
	log.Debug("discovered targets",
		"unit_tests", len(set.UnitTests),
		"integration_tests", len(set.IntegrationTests),
		"top_level", len(set.TopLevel))

	return graph, set, nil
}

// cmdPipeline runs build, test or verilog for the enclosing project.
func cmdPipeline(ctx context.Context, cmd string, args []string) int {
	if wantsHelp(args) {
		printPipelineUsage(cmd)
		return errors.ExitSuccess
	}

	flags := newFlagSet(cmd)
	path := flags.String("path", ".", "start directory for project discovery")
	if !parseCommandFlags(cmd, flags, args) {
		return errors.ExitConfigError
	}

	proj, code := loadProject(*path)
	if proj == nil {
		return code
	}

	graph, set, err := discover(ctx, proj)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}

	r := runner.New(proj.RunnerConfig(graph), hostFS, newExecutor())
	r.SetOutput(out)

	var outcome *runner.Outcome
	switch cmd {
	case "build":
		outcome, err = r.BuildTests(ctx, set.Tests())
	case "verilog":
		outcome, err = r.Verilog(ctx, set.TopLevel)
	default:
		outcome, err = r.RunTests(ctx, set.Tests())
	}
	return report(cmd, outcome, err)
}

// cmdClean removes the project's build artifacts.
func cmdClean(ctx context.Context, args []string) int {
	if wantsHelp(args) {
		printCleanUsage()
		return errors.ExitSuccess
	}

	flags := newFlagSet("clean")
	path := flags.String("path", ".", "start directory for project discovery")
	if !parseCommandFlags("clean", flags, args) {
		return errors.ExitConfigError
	}

	proj, code := loadProject(*path)
	if proj == nil {
		return code
	}

	proj.Clean(ctx, hostFS)
	out.Info("Removed %s", proj.TargetDir())
	return errors.ExitSuccess
}

// cmdInit scaffolds a new project in a directory that does not exist yet.
func cmdInit(args []string) int {
	if wantsHelp(args) {
		printInitUsage()
		return errors.ExitSuccess
	}

	flags := newFlagSet("init")
	if err := flags.Parse(args); err != nil {
		out.ErrorPrefix("init: %v", err)
		return errors.ExitConfigError
	}
	if flags.NArg() != 1 {
		out.ErrorPrefix("init: expected exactly one directory argument")
		printInitUsage()
		return errors.ExitConfigError
	}

	dir, err := filepath.Abs(flags.Arg(0))
	if err != nil {
		out.ErrorPrefix("init: %v", err)
		return errors.ExitRuntimeError
	}

	created, err := project.Init(hostFS, dir)
	if err != nil {
		out.ErrorPrefix("init: %v", err)
		return errors.GetExitCode(err)
	}

	out.Info("Created dolly project %s in %s", project.PackageName(dir), flags.Arg(0))
	for _, f := range created {
		out.Info("  - %s", f)
	}
	out.Info("")
	out.Info("Next: cd %s && dolly test", flags.Arg(0))
	return errors.ExitSuccess
}

// targetEntry is one row of the targets listing.
type targetEntry struct {
	Name      string      `json:"name" yaml:"name"`
	Kind      target.Kind `json:"kind" yaml:"kind"`
	TopModule string      `json:"top_module" yaml:"top_module"`
	Declared  bool        `json:"declared" yaml:"declared"`
	Source    string      `json:"source" yaml:"source"`
}

// targetsReport is the machine-readable form of the targets listing.
type targetsReport struct {
	Package        string        `json:"package" yaml:"package"`
	Root           string        `json:"root" yaml:"root"`
	Modules        []string      `json:"modules" yaml:"modules"`
	ExtraLibraries []string      `json:"extra_libraries,omitempty" yaml:"extra_libraries,omitempty"`
	Targets        []targetEntry `json:"targets" yaml:"targets"`
}

func newTargetsReport(proj *project.Project, graph *module.Graph, set *target.Set) targetsReport {
	report := targetsReport{
		Package:        proj.Name(),
		Root:           proj.Root,
		ExtraLibraries: graph.ExtraLibraries(),
	}
	for _, m := range graph.Modules() {
		report.Modules = append(report.Modules, relPath(proj.Root, m))
	}

	all := append(set.Tests(), set.TopLevel...)
	report.Targets = make([]targetEntry, 0, len(all))
	for _, t := range all {
		report.Targets = append(report.Targets, targetEntry{
			Name:      t.Name(),
			Kind:      t.Kind,
			TopModule: t.TopModule.Resolve(proj.DefaultTopModule()),
			Declared:  t.TopModule.Declared,
			Source:    relPath(proj.Root, t.Source),
		})
	}
	return report
}

// cmdTargets lists the discovered module graph and targets.
func cmdTargets(ctx context.Context, args []string) int {
	if wantsHelp(args) {
		printTargetsUsage()
		return errors.ExitSuccess
	}

	flags := newFlagSet("targets")
	path := flags.String("path", ".", "start directory for project discovery")
	format := flags.StringP("format", "f", "table", "output format: table, yaml or json")
	if !parseCommandFlags("targets", flags, args) {
		return errors.ExitConfigError
	}
	switch *format {
	case "table", "yaml", "json":
	default:
		out.ErrorPrefix("targets: invalid --format value %q (use table, yaml or json)", *format)
		return errors.ExitConfigError
	}

	proj, code := loadProject(*path)
	if proj == nil {
		return code
	}

	graph, set, err := discover(ctx, proj)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}
	report := newTargetsReport(proj, graph, set)

	switch *format {
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			out.ErrorPrefix("targets: %v", err)
			return errors.ExitRuntimeError
		}
		out.Println("%s", data)
	case "yaml":
		data, err := marshalYAML(report)
		if err != nil {
			out.ErrorPrefix("targets: %v", err)
			return errors.ExitRuntimeError
		}
		out.Print("%s", data)
	default:
		printTargetsTable(report)
	}
	return errors.ExitSuccess
}

func marshalYAML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func printTargetsTable(report targetsReport) {
	out.Println("Package: %s", report.Package)
	out.Println("Modules:")
	out.List(report.Modules)
	if len(report.ExtraLibraries) > 0 {
		out.Println("Extra libraries:")
		out.List(report.ExtraLibraries)
	}
	out.Println("")

	rows := make([][]string, 0, len(report.Targets))
	for _, t := range report.Targets {
		top := t.TopModule
		if !t.Declared {
			top += " (default)"
		}
		rows = append(rows, []string{t.Name, string(t.Kind), top, t.Source})
	}
	out.Table([]string{"NAME", "KIND", "TOP MODULE", "SOURCE"}, rows)
}

// relPath returns path relative to root when it lies below root.
func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
