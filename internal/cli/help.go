package cli

import (
	"fmt"

	"github.com/dolly-hdl/dolly/internal/logging"
	"github.com/dolly-hdl/dolly/internal/output"
	"github.com/dolly-hdl/dolly/internal/toolchain"
)

const helpEnvWidth = 10

func printUsage() {
	w := out

	w.HelpTitle("dolly - build orchestrator for Bluespec SystemVerilog projects")

	w.HelpSection("Usage:")
	w.HelpUsage("dolly [global flags] <command> [options]")

	w.HelpSection("Pipeline Commands:")
	w.HelpCommand("build", "Compile and link every test target", helpCommandWidth)
	w.HelpCommand("test", "Compile, link and run every test target", helpCommandWidth)
	w.HelpCommand("verilog", "Synthesize Verilog for top-level modules", helpCommandWidth)

	w.HelpSection("Project Commands:")
	w.HelpCommand("init <dir>", "Create a new project in <dir>", helpCommandWidth)
	w.HelpCommand("targets", "List discovered modules and targets", helpCommandWidth)
	w.HelpCommand("clean", "Remove build artifacts", helpCommandWidth)

	w.HelpSection("Utility Commands:")
	w.HelpCommand("version", "Show version", helpCommandWidth)
	w.HelpCommand("help", "Show this help", helpCommandWidth)

	printGlobalFlags(w)

	w.HelpSection("Examples:")
	w.HelpExample("dolly init counter", "Scaffold a project in ./counter")
	w.HelpExample("dolly test", "Run all unit and integration tests")
	w.HelpExample("dolly -v build --path hw/core", "Build with a trace of every bsc call")
	w.Println("")
}

func printGlobalFlags(w *output.Writer) {
	w.HelpSection("Global Flags:")
	w.HelpFlag("-q, --quiet", "Minimal output (errors only)", helpFlagWidth)
	w.HelpFlag("-v, --verbose", "Log discovery and toolchain calls", helpFlagWidth)
	w.HelpFlag("-h, --help", "Show help", helpFlagWidth)

	w.HelpSection("Environment:")
	w.HelpEnvVar(toolchain.EnvBinary, fmt.Sprintf("bsc executable (default %q)", toolchain.DefaultBinary), helpEnvWidth)
	w.HelpEnvVar(logging.EnvLevel, "Log level: debug, info, warn or error", helpEnvWidth)
}

func printPipelineUsage(cmd string) {
	w := out

	var desc, detail string
	switch cmd {
	case "build":
		desc = "compile and link every test target"
		detail = "Unit tests run before integration tests. No simulation is started."
	case "verilog":
		desc = "synthesize Verilog for top-level modules"
		detail = "Compiles every //!topmodule declared in the root source with -verilog."
	default:
		desc = "compile, link and run every test target"
		detail = "A test passes when it exits with status 0 and prints >>>PASS."
	}

	w.HelpTitle(fmt.Sprintf("dolly %s - %s", cmd, desc))

	w.HelpSection("Usage:")
	w.HelpUsage(fmt.Sprintf("dolly %s [--path <dir>]", cmd))

	w.HelpSection("Description:")
	w.Println("  %s", detail)
	w.Println("  The run stops at the first target that fails.")

	w.HelpSection("Options:")
	w.HelpFlag("--path <dir>", "Start project discovery in <dir>", helpFlagWidth)
	w.HelpFlag("-h, --help", "Show this help", helpFlagWidth)
	w.Println("")
}

func printCleanUsage() {
	w := out

	w.HelpTitle("dolly clean - remove build artifacts")

	w.HelpSection("Usage:")
	w.HelpUsage("dolly clean [--path <dir>]")

	w.HelpSection("Options:")
	w.HelpFlag("--path <dir>", "Start project discovery in <dir>", helpFlagWidth)
	w.HelpFlag("-h, --help", "Show this help", helpFlagWidth)
	w.Println("")
}

func printInitUsage() {
	w := out

	w.HelpTitle("dolly init - create a new project")

	w.HelpSection("Usage:")
	w.HelpUsage("dolly init <dir>")

	w.HelpSection("Description:")
	w.Println("  Creates <dir> with dolly.toml, a module under src/ and a passing")
	w.Println("  testbench under tests/. The directory must not exist yet.")

	w.HelpSection("Examples:")
	w.HelpExample("dolly init fifo", "Creates package Fifo in ./fifo")
	w.Println("")
}

func printTargetsUsage() {
	w := out

	w.HelpTitle("dolly targets - list discovered modules and targets")

	w.HelpSection("Usage:")
	w.HelpUsage("dolly targets [--path <dir>] [--format <fmt>]")

	w.HelpSection("Options:")
	w.HelpFlag("--path <dir>", "Start project discovery in <dir>", helpFlagWidth)
	w.HelpFlag("-f, --format <fmt>", "table, yaml or json (default table)", helpFlagWidth)
	w.HelpFlag("-h, --help", "Show this help", helpFlagWidth)
	w.Println("")
}
