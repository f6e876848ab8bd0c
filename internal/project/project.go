package project

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"

	"github.com/dolly-hdl/dolly/internal/config"
	"github.com/dolly-hdl/dolly/internal/errors"
	"github.com/dolly-hdl/dolly/internal/module"
	"github.com/dolly-hdl/dolly/internal/runner"
	"github.com/dolly-hdl/dolly/internal/target"
	"github.com/dolly-hdl/dolly/internal/toolchain"
)

// Project represents a loaded dolly project.
type Project struct {
	Root   string
	Config *config.Config
}

// Load finds and loads the project enclosing the current directory.
func Load(fsys billy.Filesystem) (*Project, error) {
	root, err := FindRoot(fsys)
	if err != nil {
		return nil, err
	}
	return LoadFrom(fsys, root)
}

// LoadFrom loads the project whose dolly.toml lives in root.
func LoadFrom(fsys billy.Filesystem, root string) (*Project, error) {
	cfg, err := config.Load(fsys, filepath.Join(root, FileName))
	if err != nil {
		return nil, errors.WrapConfig(err, "failed to load project")
	}
	return &Project{Root: root, Config: cfg}, nil
}

// Name returns the package name, which is also the root module's name.
func (p *Project) Name() string {
	return p.Config.Package.Name
}

// ConfigPath returns the full path to dolly.toml.
func (p *Project) ConfigPath() string {
	return filepath.Join(p.Root, FileName)
}

// SrcDir returns the root module directory.
func (p *Project) SrcDir() string {
	return filepath.Join(p.Root, SrcDirName)
}

// TestsDir returns the integration test directory.
func (p *Project) TestsDir() string {
	return filepath.Join(p.Root, TestsDirName)
}

// TargetDir returns the directory holding all build artifacts.
func (p *Project) TargetDir() string {
	return filepath.Join(p.Root, TargetDirName)
}

// RootSource returns the root module's definition file, src/<name>.bsv.
func (p *Project) RootSource() string {
	return module.DefinitionFile(p.SrcDir(), p.Name())
}

// DefaultTopModule returns the module elaborated when a source declares none.
func (p *Project) DefaultTopModule() string {
	if p.Config.Build != nil && p.Config.Build.DefaultTopModule != "" {
		return p.Config.Build.DefaultTopModule
	}
	return toolchain.DefaultTopModule
}

// Toolchain returns the bsc profile from dolly.toml with the DOLLY_BSC
// override applied.
func (p *Project) Toolchain() toolchain.Toolchain {
	tc := p.Config.ToolchainProfile()
	if bin := os.Getenv(toolchain.EnvBinary); bin != "" {
		tc.Binary = bin
	}
	return tc
}

// ModuleOptions returns the module graph discovery options for this project.
func (p *Project) ModuleOptions() module.Options {
	return module.Options{RootDir: p.SrcDir(), PackageName: p.Name()}
}

// Layout returns where target discovery looks for tests and top modules.
func (p *Project) Layout() target.Layout {
	return target.Layout{TestDir: p.TestsDir(), RootSource: p.RootSource()}
}

// RunnerConfig returns the pipeline configuration for a discovered graph.
func (p *Project) RunnerConfig(graph *module.Graph) runner.Config {
	return runner.Config{
		Toolchain:        p.Toolchain(),
		Modules:          graph.Modules(),
		ArtifactRoot:     p.TargetDir(),
		DefaultTopModule: p.DefaultTopModule(),
	}
}
