// Package schema validates dolly.toml documents against the embedded JSON schema.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	schemafs "github.com/dolly-hdl/dolly/schema"
)

var (
	projectSchema *jsonschema.Schema
	compileOnce   sync.Once
	compileErr    error
)

// compileSchemas compiles the embedded schema once.
func compileSchemas() error {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()

		data, err := schemafs.FS.ReadFile(schemafs.ProjectSchema)
		if err != nil {
			compileErr = fmt.Errorf("read project schema: %w", err)
			return
		}

		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			compileErr = fmt.Errorf("unmarshal project schema: %w", err)
			return
		}

		if err := compiler.AddResource(schemafs.ProjectSchema, doc); err != nil {
			compileErr = fmt.Errorf("add project schema resource: %w", err)
			return
		}

		projectSchema, err = compiler.Compile(schemafs.ProjectSchema)
		if err != nil {
			compileErr = fmt.Errorf("compile project schema: %w", err)
		}
	})

	return compileErr
}

// ValidateProjectJSON validates a JSON rendering of dolly.toml.
func ValidateProjectJSON(data []byte) error {
	if err := compileSchemas(); err != nil {
		return err
	}

	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := projectSchema.Validate(v); err != nil {
		return fmt.Errorf("project validation failed: %w", err)
	}

	return nil
}

// ValidateProject validates a decoded dolly.toml document. The document is
// round-tripped through JSON so TOML integers and dates take the shapes the
// validator expects.
func ValidateProject(doc map[string]any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode project document: %w", err)
	}
	return ValidateProjectJSON(data)
}
