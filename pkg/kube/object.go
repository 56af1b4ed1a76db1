package kube

type ResourceMetadata struct {
	APIVersion string `json:"apiVersion"`
	Kind       string `json:"kind"`
	Namespace  string `json:"namespace"`
	Name       string `json:"name"`
}

// Object is a decoded manifest. Lookups never fail: a missing or mistyped
// field reads as its zero value.
type Object map[string]any

func (o Object) GetMetadata() ResourceMetadata {
	return ResourceMetadata{
		APIVersion: o.GetAPIVersion(),
		Kind:       o.GetKind(),
		Namespace:  o.GetNamespace(),
		Name:       o.GetName(),
	}
}

// GetAPIVersion returns the apiVersion of the object, or an empty string.
func (o Object) GetAPIVersion() string {
	return stringField(o, "apiVersion")
}

// GetKind returns the kind of the object, or an empty string.
func (o Object) GetKind() string {
	return stringField(o, "kind")
}

// GetName returns metadata.name, or an empty string.
func (o Object) GetName() string {
	return stringField(NestedMap(o, "metadata"), "name")
}

// GetNamespace returns metadata.namespace, or an empty string.
func (o Object) GetNamespace() string {
	return stringField(NestedMap(o, "metadata"), "namespace")
}

// GetAnnotations returns metadata.annotations. Entries whose value is not a
// string are kept with an empty value, since only the keys carry meaning
// for routing. It returns nil when there are no annotations.
func (o Object) GetAnnotations() map[string]string {
	raw := NestedMap(o, "metadata", "annotations")
	if raw == nil {
		return nil
	}

	annotations := make(map[string]string, len(raw))
	for k, v := range raw {
		s, _ := v.(string)
		annotations[k] = s
	}

	return annotations
}

// GetContainers returns the containers of the pod template at
// spec.template.spec.containers. Non-mapping entries are skipped.
func (o Object) GetContainers() []Object {
	raw, ok := NestedMap(o, "spec", "template", "spec")["containers"].([]any)
	if !ok {
		return nil
	}

	containers := make([]Object, 0, len(raw))
	for _, c := range raw {
		if m := asMap(c); m != nil {
			containers = append(containers, m)
		}
	}

	return containers
}

func (o Object) GetNamespacedName() string {
	ns := o.GetNamespace()
	name := o.GetName()
	if ns != "" {
		return ns + "/" + name
	}

	return name
}

// NestedMap walks the given keys and returns the mapping found at the end,
// or nil when any step is missing or not a mapping.
func NestedMap(o map[string]any, keys ...string) map[string]any {
	cur := o
	for _, k := range keys {
		if cur == nil {
			return nil
		}

		cur = asMap(cur[k])
	}

	return cur
}

// asMap accepts both map[string]any and map[any]any, since YAML decoders
// differ in what they produce for non-string keys.
func asMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case Object:
		return m
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			if ks, ok := k.(string); ok {
				out[ks] = v
			}
		}

		return out
	}

	return nil
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}

	s, _ := m[key].(string)

	return s
}
