package config

import (
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/fluidos-project/kubectl-fluidos/pkg/yaml"
)

const (
	APIVersion = "fluidos.eu/v1alpha1"
	Kind       = "Configuration"

	DefaultMSPLHostname = "localhost"
	DefaultMSPLPort     = 8002
	DefaultMSPLSchema   = "http"

	DefaultNamespace      = "default"
	DefaultKubectlCommand = "kubectl"

	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

var (
	ValidAPIVersions = []string{APIVersion}
	ValidKinds       = []string{Kind}
)

//nolint:recvcheck // Must satisfy the jsonschema interface.
type Config struct {
	MSPL       *MSPLConfig       `json:"mspl,omitempty"       jsonschema:"title=MSPL"`
	ModelBased *ModelBasedConfig `json:"modelBased,omitempty" jsonschema:"title=Model Based"`
	Intent     *IntentConfig     `json:"intent,omitempty"     jsonschema:"title=Intent"`
	Kubectl    *KubectlConfig    `json:"kubectl,omitempty"    jsonschema:"title=Kubectl"`
	Log        *LogConfig        `json:"log,omitempty"        jsonschema:"title=Log"`
	// APIVersion specifies the API version for this configuration.
	APIVersion string `json:"apiVersion" jsonschema:"title=API Version"`
	// Kind defines the type of configuration.
	Kind string `json:"kind" jsonschema:"title=Kind"`
}

// MSPLConfig locates the MSPL orchestrator endpoint.
// URL takes precedence over the individual parts.
type MSPLConfig struct {
	// URL is the full endpoint, including the path.
	URL string `json:"url,omitempty" jsonschema:"title=URL"`
	// Hostname of the orchestrator.
	Hostname string `json:"hostname,omitempty" jsonschema:"title=Hostname"`
	// Schema is the URL scheme used to reach the orchestrator.
	Schema string `json:"schema,omitempty" jsonschema:"title=Schema,enum=http,enum=https"`
	// Port of the orchestrator.
	Port int `json:"port,omitempty" jsonschema:"title=Port,minimum=1,maximum=65535"`
}

// ModelBasedConfig configures where FLUIDOSDeployment resources are created.
type ModelBasedConfig struct {
	// Namespace for created resources. Defaults to the kubeconfig namespace.
	Namespace string `json:"namespace,omitempty" jsonschema:"title=Namespace"`
}

// IntentConfig configures intent detection.
type IntentConfig struct {
	// AnnotationPrefix marks an annotation key as an intent.
	AnnotationPrefix string `json:"annotationPrefix,omitempty" jsonschema:"title=Annotation Prefix"`
	// Expression is a CEL expression over `manifest`. It replaces the
	// annotation prefix check when set.
	Expression string `json:"expression,omitempty" jsonschema:"title=Expression"`
	// ContainerResource additionally matches Deployments whose containers
	// list this key under resources, e.g. "quality_intent".
	ContainerResource string `json:"containerResource,omitempty" jsonschema:"title=Container Resource"`
}

// KubectlConfig configures the fallback apply.
type KubectlConfig struct {
	// Command is parsed as shell words, e.g. "kubectl --context=dev".
	Command string `json:"command,omitempty" jsonschema:"title=Command"`
}

type LogConfig struct {
	Level  string `json:"level,omitempty"  jsonschema:"title=Level,enum=error,enum=warn,enum=info,enum=debug"`
	Format string `json:"format,omitempty" jsonschema:"title=Format,enum=text,enum=logfmt,enum=json"`
}

// NewConfig returns a [*Config] populated with defaults.
func NewConfig() *Config {
	c := &Config{
		APIVersion: APIVersion,
		Kind:       Kind,
	}
	c.EnsureDefaults()

	return c
}

// EnsureDefaults fills every unset field with its default. The MSPL
// endpoint and the namespace are left alone, since their defaults depend
// on the kubeconfig.
func (c *Config) EnsureDefaults() {
	if c.MSPL == nil {
		c.MSPL = &MSPLConfig{}
	}

	if c.ModelBased == nil {
		c.ModelBased = &ModelBasedConfig{}
	}

	if c.Intent == nil {
		c.Intent = &IntentConfig{}
	}

	if c.Kubectl == nil {
		c.Kubectl = &KubectlConfig{}
	}

	if c.Kubectl.Command == "" {
		c.Kubectl.Command = DefaultKubectlCommand
	}

	if c.Log == nil {
		c.Log = &LogConfig{}
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}

	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

func (c Config) JSONSchemaExtend(jss *jsonschema.Schema) {
	apiVersion, ok := jss.Properties.Get("apiVersion")
	if !ok {
		panic("apiVersion property not found in schema")
	}

	for _, version := range ValidAPIVersions {
		apiVersion.OneOf = append(apiVersion.OneOf, &jsonschema.Schema{
			Type:  "string",
			Const: version,
			Title: "API Version",
		})
	}

	_, _ = jss.Properties.Set("apiVersion", apiVersion)

	kind, ok := jss.Properties.Get("kind")
	if !ok {
		panic("kind property not found in schema")
	}

	for _, kindValue := range ValidKinds {
		kind.OneOf = append(kind.OneOf, &jsonschema.Schema{
			Type:  "string",
			Const: kindValue,
			Title: "Kind",
		})
	}

	_, _ = jss.Properties.Set("kind", kind)
}

// Encode serializes the configuration to YAML.
func (c *Config) Encode() ([]byte, error) {
	b, err := yaml.Marshal(*c)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}

	return b, nil
}
