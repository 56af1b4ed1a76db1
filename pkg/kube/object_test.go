package kube_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fluidos-project/kubectl-fluidos/pkg/kube"
)

func TestObject_GetMetadata(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		object kube.Object
		want   kube.ResourceMetadata
	}{
		"full metadata": {
			object: kube.Object{
				"apiVersion": "apps/v1",
				"kind":       "Deployment",
				"metadata": map[string]any{
					"name":      "dataset-operator",
					"namespace": "fluidos",
				},
			},
			want: kube.ResourceMetadata{
				APIVersion: "apps/v1",
				Kind:       "Deployment",
				Namespace:  "fluidos",
				Name:       "dataset-operator",
			},
		},
		"non-string fields": {
			object: kube.Object{
				"apiVersion": 123,
				"metadata":   map[string]any{"name": true},
			},
			want: kube.ResourceMetadata{},
		},
		"metadata is not a mapping": {
			object: kube.Object{"metadata": "oops"},
			want:   kube.ResourceMetadata{},
		},
		"empty object": {
			object: kube.Object{},
			want:   kube.ResourceMetadata{},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tc.object.GetMetadata())
		})
	}
}

func TestObject_GetAnnotations(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		object kube.Object
		want   map[string]string
	}{
		"string annotations": {
			object: kube.Object{
				"metadata": map[string]any{
					"annotations": map[string]any{
						"fluidos-intent-latency": "100ms",
						"team":                   "edge",
					},
				},
			},
			want: map[string]string{
				"fluidos-intent-latency": "100ms",
				"team":                   "edge",
			},
		},
		"non-string value keeps the key": {
			object: kube.Object{
				"metadata": map[string]any{
					"annotations": map[string]any{"fluidos-intent-replicas": 3},
				},
			},
			want: map[string]string{"fluidos-intent-replicas": ""},
		},
		"map with any keys": {
			object: kube.Object{
				"metadata": map[any]any{
					"annotations": map[any]any{"a": "b", 1: "dropped"},
				},
			},
			want: map[string]string{"a": "b"},
		},
		"no annotations": {
			object: kube.Object{"metadata": map[string]any{"name": "x"}},
			want:   nil,
		},
		"no metadata": {
			object: kube.Object{"kind": "Pod"},
			want:   nil,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tc.object.GetAnnotations())
		})
	}
}

func TestObject_GetContainers(t *testing.T) {
	t.Parallel()

	obj := kube.Object{
		"spec": map[string]any{
			"template": map[string]any{
				"spec": map[string]any{
					"containers": []any{
						map[string]any{"name": "app"},
						"not-a-container",
						map[string]any{"name": "sidecar"},
					},
				},
			},
		},
	}

	containers := obj.GetContainers()
	if assert.Len(t, containers, 2) {
		assert.Equal(t, "app", containers[0]["name"])
		assert.Equal(t, "sidecar", containers[1]["name"])
	}

	assert.Nil(t, kube.Object{"kind": "Service"}.GetContainers())
}

func TestObject_GetNamespacedName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ns/a", kube.Object{
		"metadata": map[string]any{"name": "a", "namespace": "ns"},
	}.GetNamespacedName())
	assert.Equal(t, "a", kube.Object{
		"metadata": map[string]any{"name": "a"},
	}.GetNamespacedName())
}
