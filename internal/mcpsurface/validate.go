package mcpsurface

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// compiledSchema wraps a *jsonschema.Schema compiled from a ToolSpec's
// map[string]interface{} JSON Schema.
type compiledSchema struct {
	schema *jsonschema.Schema
}

// compileSchema compiles a JSON-Schema-shaped map under a synthetic
// resource URI unique to name, so schema compilation errors can be traced
// back to the offending tool.
func compileSchema(name string, def map[string]interface{}) (*compiledSchema, error) {
	if len(def) == 0 {
		return nil, nil
	}

	raw, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshaling schema for %q: %w", name, err)
	}

	uri := "mem://" + name + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(uri, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("adding schema resource for %q: %w", name, err)
	}
	schema, err := compiler.Compile(uri)
	if err != nil {
		return nil, fmt.Errorf("compiling schema for %q: %w", name, err)
	}
	return &compiledSchema{schema: schema}, nil
}

// validate checks value (typically a map[string]interface{} decoded from
// JSON) against the compiled schema. A nil compiledSchema always passes.
func (c *compiledSchema) validate(value interface{}) error {
	if c == nil || c.schema == nil {
		return nil
	}
	return c.schema.Validate(value)
}
