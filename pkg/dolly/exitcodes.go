// Package dolly exposes constants for scripts and CI jobs that invoke the
// dolly CLI and need to interpret its exit status.
package dolly

// Exit codes returned by the dolly CLI.
const (
	// ExitSuccess: every attempted target passed.
	ExitSuccess = 0

	// ExitFailure: a compile or link stage failed, a test did not print the
	// pass marker, or discovery hit an I/O error.
	ExitFailure = 1

	// ExitConfigError: dolly.toml is invalid or a flag was misused.
	ExitConfigError = 2

	// ExitEnvError: the bsc toolchain could not be found.
	ExitEnvError = 3
)

// PassMarker is the literal a testbench prints to stdout to report success.
const PassMarker = ">>>PASS"
