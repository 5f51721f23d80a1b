package mapping

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "mapping.schema.json"

//go:embed mapping.schema.json
var schemaSource []byte

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaSource)); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaURL)
})

// validateSchema checks a decoded YAML tree against the document schema.
// The tree goes through JSON first so that it holds the value types the
// validator expects.
func validateSchema(tree any) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile mapping schema: %w", err)
	}

	raw, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping for schema validation: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("failed to normalize mapping for schema validation: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
