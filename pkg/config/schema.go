package config

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/fluidos-project/kubectl-fluidos/pkg/yaml"
)

//go:generate go run ../../internal/schemagen -o config.v1alpha1.json

const schemaURL = "https://fluidos.eu/schemas/kubectl-fluidos/config.v1alpha1.json"

var defaultValidator = sync.OnceValues(func() (*yaml.Validator, error) {
	data, err := Schema()
	if err != nil {
		return nil, err
	}

	return yaml.NewValidator(schemaURL, data)
})

// Schema returns the JSON schema for [Config].
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
	}

	jss := r.Reflect(&Config{})
	jss.ID = schemaURL
	jss.Title = "kubectl-fluidos configuration"

	data, err := json.MarshalIndent(jss, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return data, nil
}

// DefaultValidator returns the [Validator] for the reflected [Config] schema.
func DefaultValidator() Validator {
	v, err := defaultValidator()
	if err != nil {
		panic(fmt.Errorf("config schema: %w", err))
	}

	return v
}
