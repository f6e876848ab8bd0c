// Package config loads and validates dolly.toml project descriptors.
package config

// Config represents the complete dolly.toml descriptor.
type Config struct {
	Package   PackageConfig    `toml:"package" json:"package" yaml:"package"`
	Build     *BuildConfig     `toml:"build,omitempty" json:"build,omitempty" yaml:"build,omitempty"`
	Toolchain *ToolchainConfig `toml:"toolchain,omitempty" json:"toolchain,omitempty" yaml:"toolchain,omitempty"`
}

// PackageConfig identifies the project. Name doubles as the root module's
// package name.
type PackageConfig struct {
	Name    string `toml:"name" json:"name" yaml:"name"`
	Version string `toml:"version" json:"version" yaml:"version"`
}

// BuildConfig tunes the build pipeline.
type BuildConfig struct {
	DefaultTopModule string `toml:"default_top_module,omitempty" json:"default_top_module,omitempty" yaml:"default_top_module,omitempty"`
	CheckAssertions  *bool  `toml:"check_assertions,omitempty" json:"check_assertions,omitempty" yaml:"check_assertions,omitempty"`
	Quiet            *bool  `toml:"quiet,omitempty" json:"quiet,omitempty" yaml:"quiet,omitempty"`
}

// ToolchainConfig configures the bsc invocation.
type ToolchainConfig struct {
	BSC          string   `toml:"bsc,omitempty" json:"bsc,omitempty" yaml:"bsc,omitempty"`
	LibraryRoot  string   `toml:"library_root,omitempty" json:"library_root,omitempty" yaml:"library_root,omitempty"`
	CompileFlags []string `toml:"compile_flags,omitempty" json:"compile_flags,omitempty" yaml:"compile_flags,omitempty"`
	LinkFlags    []string `toml:"link_flags,omitempty" json:"link_flags,omitempty" yaml:"link_flags,omitempty"`
}
