package expr

import (
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"

	"github.com/fluidos-project/kubectl-fluidos/pkg/kube"
)

// VarManifest is the name of the variable holding the manifest.
const VarManifest = "manifest"

type lib struct{}

func (lib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		ext.Strings(),
		ext.Lists(),

		cel.Variable(VarManifest, cel.MapType(cel.StringType, cel.DynType)),

		cel.Function("annotations",
			cel.Overload("annotations_map", []*cel.Type{cel.MapType(cel.StringType, cel.DynType)},
				cel.MapType(cel.StringType, cel.StringType),
				cel.UnaryBinding(func(manifest ref.Val) ref.Val {
					obj, ok := toObject(manifest)
					if !ok {
						return types.NewErr("annotations: expected a manifest mapping")
					}

					annotations := obj.GetAnnotations()
					if annotations == nil {
						annotations = map[string]string{}
					}

					return types.DefaultTypeAdapter.NativeToValue(annotations)
				}),
			),
		),

		cel.Function("containers",
			cel.Overload("containers_map", []*cel.Type{cel.MapType(cel.StringType, cel.DynType)},
				cel.ListType(cel.MapType(cel.StringType, cel.DynType)),
				cel.UnaryBinding(func(manifest ref.Val) ref.Val {
					obj, ok := toObject(manifest)
					if !ok {
						return types.NewErr("containers: expected a manifest mapping")
					}

					containers := []any{}
					for _, c := range obj.GetContainers() {
						containers = append(containers, map[string]any(c))
					}

					return types.DefaultTypeAdapter.NativeToValue(containers)
				}),
			),
		),
	}
}

func (lib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}

func toObject(v ref.Val) (kube.Object, bool) {
	switch m := v.Value().(type) {
	case map[string]any:
		return m, true
	case kube.Object:
		return m, true
	}

	return nil, false
}
