package intent

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fluidos-project/kubectl-fluidos/pkg/config"
	"github.com/fluidos-project/kubectl-fluidos/pkg/expr"
	"github.com/fluidos-project/kubectl-fluidos/pkg/kube"
)

const (
	// DefaultPrefix is the annotation key prefix marking an intent.
	DefaultPrefix = "fluidos-intent-"

	// QualityIntent is the container resource key used by the
	// resource-based detection.
	QualityIntent = "quality_intent"
)

// Predicate reports whether a manifest carries an intent.
// A nil manifest never carries one.
type Predicate func(manifest kube.Object) bool

// HasIntent is the default [Predicate]. It matches manifests having at
// least one annotation whose key starts with [DefaultPrefix].
func HasIntent(manifest kube.Object) bool {
	return AnnotationPrefix(DefaultPrefix)(manifest)
}

// AnnotationPrefix returns a [Predicate] matching manifests with an
// annotation key starting with prefix. The comparison is case-sensitive.
func AnnotationPrefix(prefix string) Predicate {
	return func(manifest kube.Object) bool {
		for key := range manifest.GetAnnotations() {
			if strings.HasPrefix(key, prefix) {
				return true
			}
		}

		return false
	}
}

// ContainerResource returns a [Predicate] matching workloads where any
// container of the pod template lists key under its resources.
func ContainerResource(key string) Predicate {
	return func(manifest kube.Object) bool {
		for _, c := range manifest.GetContainers() {
			if _, ok := kube.NestedMap(c, "resources")[key]; ok {
				return true
			}
		}

		return false
	}
}

// Kind returns a [Predicate] matching manifests of the given kind.
func Kind(kind string) Predicate {
	return func(manifest kube.Object) bool {
		return manifest.GetKind() == kind
	}
}

// All matches when every predicate matches.
func All(predicates ...Predicate) Predicate {
	return func(manifest kube.Object) bool {
		for _, p := range predicates {
			if !p(manifest) {
				return false
			}
		}

		return true
	}
}

// Any matches when at least one predicate matches.
func Any(predicates ...Predicate) Predicate {
	return func(manifest kube.Object) bool {
		for _, p := range predicates {
			if p(manifest) {
				return true
			}
		}

		return false
	}
}

// Expression compiles a CEL expression into a [Predicate]. The expression
// sees the manifest as the variable `manifest`. Evaluation errors are
// treated as no match.
func Expression(expression string) (Predicate, error) {
	env, err := expr.NewEnvironment()
	if err != nil {
		return nil, err
	}

	prg, err := env.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("intent expression: %w", err)
	}

	return func(manifest kube.Object) bool {
		if manifest == nil {
			return false
		}

		ok, err := prg.Eval(manifest)
		if err != nil {
			slog.Debug("intent expression failed",
				slog.String("expression", expression),
				slog.Any("err", err),
			)

			return false
		}

		return ok
	}, nil
}

// FromConfig builds the [Predicate] described by cfg. An expression takes
// precedence over the annotation prefix. A nil cfg yields [HasIntent].
func FromConfig(cfg *config.IntentConfig) (Predicate, error) {
	if cfg == nil {
		return HasIntent, nil
	}

	if cfg.Expression != "" {
		return Expression(cfg.Expression)
	}

	var p Predicate = HasIntent
	if cfg.AnnotationPrefix != "" {
		p = AnnotationPrefix(cfg.AnnotationPrefix)
	}

	if cfg.ContainerResource != "" {
		p = Any(p, All(Kind("Deployment"), ContainerResource(cfg.ContainerResource)))
	}

	return p, nil
}
