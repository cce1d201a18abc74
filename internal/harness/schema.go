package harness

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaSource string

// validateShape checks a raw scenario document against the embedded
// CUE schema. The definition is closed, so unknown fields, wrong
// types, and out-of-range values are all rejected with CUE's error
// positions before the Go decoder ever sees the document.
func validateShape(filename string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Scenario"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("schema has no #Scenario definition: %w", err)
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("failed to build document: %w", err)
	}

	if err := def.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema violation: %w", err)
	}
	return nil
}
