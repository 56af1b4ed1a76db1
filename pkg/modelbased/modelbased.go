package modelbased

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"

	"github.com/fluidos-project/kubectl-fluidos/pkg/kube"
	"github.com/fluidos-project/kubectl-fluidos/pkg/log"
)

const (
	Group    = "fluidos.eu"
	Version  = "v1"
	Kind     = "FLUIDOSDeployment"
	Resource = "fluidosdeployments"

	DefaultNamespace = "default"
)

var (
	// GroupVersionResource of FLUIDOSDeployment.
	GroupVersionResource = schema.GroupVersionResource{
		Group:    Group,
		Version:  Version,
		Resource: Resource,
	}

	ErrInvalidManifest = errors.New("invalid manifest")
	ErrMissingName     = errors.New("metadata.name is required")
)

// Configuration of the model-based handler.
type Configuration struct {
	// Namespace FLUIDOSDeployment resources are created in.
	Namespace string
}

// Wrap parses doc, which must hold a single manifest, and nests it as the
// spec of a FLUIDOSDeployment named after the manifest.
func Wrap(doc []byte) (*unstructured.Unstructured, error) {
	manifest, err := kube.ParseSingle(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	name := manifest.GetName()
	if name == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, ErrMissingName)
	}

	return &unstructured.Unstructured{
		Object: map[string]any{
			"apiVersion": Group + "/" + Version,
			"kind":       Kind,
			"metadata": map[string]any{
				"name": name,
			},
			"spec": map[string]any(manifest),
		},
	}, nil
}

// RESTConfigGetter returns the REST configuration of the current cluster.
type RESTConfigGetter interface {
	ToRESTConfig() (*rest.Config, error)
}

// NewClient creates a dynamic client for the cluster described by getter.
func NewClient(getter RESTConfigGetter) (dynamic.Interface, error) {
	restCfg, err := getter.ToRESTConfig()
	if err != nil {
		return nil, fmt.Errorf("load kubeconfig: %w", err)
	}

	client, err := dynamic.NewForConfig(restCfg)
	if err != nil {
		return nil, fmt.Errorf("create dynamic client: %w", err)
	}

	return client, nil
}

// Processor creates FLUIDOSDeployment resources.
type Processor struct {
	client dynamic.Interface
	out    io.Writer
	tracer trace.Tracer
	cfg    Configuration
}

// ProcessorOpt configures a [Processor].
type ProcessorOpt func(*Processor)

// WithOutput sets where the outcome is reported. Defaults to [os.Stdout].
func WithOutput(w io.Writer) ProcessorOpt {
	return func(p *Processor) {
		p.out = w
	}
}

// NewProcessor creates a new [Processor].
func NewProcessor(cfg Configuration, client dynamic.Interface, opts ...ProcessorOpt) *Processor {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}

	p := &Processor{
		cfg:    cfg,
		client: client,
		out:    os.Stdout,
		tracer: otel.Tracer("modelbased"),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Process wraps doc and creates it in the cluster. It returns 0 on
// success and 1 when the document is malformed or the API call fails.
func (p *Processor) Process(ctx context.Context, doc []byte) int {
	ctx, span := p.tracer.Start(ctx, "modelbased.process", trace.WithAttributes(
		attribute.String("namespace", p.cfg.Namespace),
	))
	defer span.End()

	logger := log.WithContext(ctx).With(
		slog.String("namespace", p.cfg.Namespace),
	)

	obj, err := Wrap(doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid manifest")
		logger.ErrorContext(ctx, "wrap manifest", slog.Any("err", err))

		return 1
	}

	meta := kube.Object(obj.Object).GetMetadata()
	manifest := kube.Object(kube.NestedMap(obj.Object, "spec"))

	logger = logger.With(
		slog.String("name", meta.Name),
		slog.String("manifest", manifest.GetNamespacedName()),
	)
	span.SetAttributes(
		attribute.String("name", meta.Name),
		attribute.String("manifest.kind", manifest.GetKind()),
	)

	created, err := p.client.Resource(GroupVersionResource).
		Namespace(p.cfg.Namespace).
		Create(ctx, obj, metav1.CreateOptions{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		logger.ErrorContext(ctx, "create "+Kind, slog.Any("err", err))

		return 1
	}

	logger.DebugContext(ctx, "created "+Kind,
		slog.String("uid", string(created.GetUID())),
	)

	_, err = fmt.Fprintf(p.out, "%s.%s/%s created\n", strings.ToLower(Kind), Group, created.GetName())
	if err != nil {
		logger.ErrorContext(ctx, "write output", slog.Any("err", err))
	}

	return 0
}
