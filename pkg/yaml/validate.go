package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Validator checks decoded YAML documents against a JSON schema, using
// [github.com/santhosh-tekuri/jsonschema/v6].
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles schemaData, registered under url.
func NewValidator(url string, schemaData []byte) (*Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaData))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	c := jsonschema.NewCompiler()

	err = c.AddResource(url, doc)
	if err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	s, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &Validator{schema: s}, nil
}

// Validate checks data against the schema. Schema violations are returned
// as an [*Error] whose Path points at the deepest offending node, so that
// callers can annotate the source.
func (v *Validator) Validate(data any) error {
	err := v.schema.Validate(data)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("schema validation: %w", err)
	}

	return &Error{
		Err:  verr,
		Path: instancePath(deepest(verr).InstanceLocation),
	}
}

// deepest returns the cause with the longest instance location.
func deepest(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	best := err
	for _, cause := range err.Causes {
		c := deepest(cause)
		if len(c.InstanceLocation) > len(best.InstanceLocation) {
			best = c
		}
	}

	return best
}

func instancePath(location []string) *yaml.Path {
	b := NewPathBuilder().Root()
	for _, part := range location {
		idx, err := strconv.ParseUint(part, 10, 0)
		if err != nil {
			b = b.Child(part)
			continue
		}

		b = b.Index(uint(idx))
	}

	return b.Build()
}
