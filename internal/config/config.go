package config

import (
	"bytes"
	"fmt"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pelletier/go-toml/v2"

	"github.com/dolly-hdl/dolly/internal/schema"
)

// Parse decodes, schema-checks and validates a dolly.toml document, then
// applies defaults.
func Parse(data []byte) (*Config, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse project file: %w", err)
	}
	if err := schema.ValidateProject(doc); err != nil {
		return nil, err
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse project file: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Load reads and parses the descriptor at path.
func Load(fsys billy.Basic, path string) (*Config, error) {
	data, err := util.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}
	return Parse(data)
}

// Encode renders cfg as TOML. Only fields that are set are written.
func Encode(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(false)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode project file: %w", err)
	}
	return buf.Bytes(), nil
}
