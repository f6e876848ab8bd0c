// Package schema provides the embedded JSON schema for dolly.toml.
package schema

import "embed"

// ProjectSchema is the file name of the descriptor schema within FS.
const ProjectSchema = "project.schema.json"

// FS contains the embedded schema files.
//
//go:embed *.schema.json
var FS embed.FS
