// Package validation checks mutation payloads against per-resource JSON
// Schemas before they reach the repository layer.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is one compiled JSON Schema.
type Schema struct {
	schema *gojsonschema.Schema
}

// Compile parses and compiles a schema document.
func Compile(doc []byte) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{schema: s}, nil
}

// Validate checks a JSON payload. On failure the error lists the first few
// violations.
func (s *Schema) Validate(doc []byte) error {
	res, err := s.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return err
	}
	if !res.Valid() {
		var msgs []string
		for i, e := range res.Errors() {
			if i >= 5 {
				break
			}
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}

// Registry holds the compiled schema per resource. Resources without a
// schema accept any JSON object.
type Registry struct {
	schemas map[string]*Schema
}

func NewRegistry() *Registry { return &Registry{schemas: map[string]*Schema{}} }

// Register compiles and stores a schema for a resource.
func (r *Registry) Register(resource string, doc []byte) error {
	s, err := Compile(doc)
	if err != nil {
		return fmt.Errorf("resource %s: %w", resource, err)
	}
	r.schemas[resource] = s
	return nil
}

// Validate checks a payload against the resource's schema, if one exists.
func (r *Registry) Validate(resource string, doc []byte) error {
	s, ok := r.schemas[resource]
	if !ok {
		return nil
	}
	return s.Validate(doc)
}
