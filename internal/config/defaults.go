package config

import "github.com/dolly-hdl/dolly/internal/toolchain"

// Default configuration values.
const (
	DefaultVersion = "0.1.0"
)

// applyDefaults fills in default values for unset configuration fields.
func applyDefaults(cfg *Config) {
	applyBuildDefaults(cfg)
	applyToolchainDefaults(cfg)
}

func applyBuildDefaults(cfg *Config) {
	if cfg.Build == nil {
		cfg.Build = &BuildConfig{}
	}
	if cfg.Build.DefaultTopModule == "" {
		cfg.Build.DefaultTopModule = toolchain.DefaultTopModule
	}
	if cfg.Build.CheckAssertions == nil {
		cfg.Build.CheckAssertions = boolPtr(true)
	}
	if cfg.Build.Quiet == nil {
		cfg.Build.Quiet = boolPtr(true)
	}
}

func applyToolchainDefaults(cfg *Config) {
	if cfg.Toolchain == nil {
		cfg.Toolchain = &ToolchainConfig{}
	}
	if cfg.Toolchain.BSC == "" {
		cfg.Toolchain.BSC = toolchain.DefaultBinary
	}
	if cfg.Toolchain.LibraryRoot == "" {
		cfg.Toolchain.LibraryRoot = toolchain.DefaultLibraryRoot
	}
}

func boolPtr(b bool) *bool {
	return &b
}

// New returns a descriptor for a freshly initialized package.
func New(name string) *Config {
	return &Config{Package: PackageConfig{Name: name, Version: DefaultVersion}}
}

// ToolchainProfile converts the descriptor into a bsc invocation profile. Defaults
// must already be applied.
func (c *Config) ToolchainProfile() toolchain.Toolchain {
	tc := toolchain.Default()
	if c.Toolchain != nil {
		if c.Toolchain.BSC != "" {
			tc.Binary = c.Toolchain.BSC
		}
		if c.Toolchain.LibraryRoot != "" {
			tc.LibraryRoot = c.Toolchain.LibraryRoot
		}
		tc.CompileFlags = c.Toolchain.CompileFlags
		tc.LinkFlags = c.Toolchain.LinkFlags
	}
	if c.Build != nil {
		if c.Build.Quiet != nil {
			tc.Quiet = *c.Build.Quiet
		}
		if c.Build.CheckAssertions != nil {
			tc.CheckAssertions = *c.Build.CheckAssertions
		}
	}
	return tc
}
