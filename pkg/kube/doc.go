// Package kube provides helpers for loosely typed Kubernetes manifests.
//
// [Object] wraps a decoded manifest (a map of string keys to arbitrary
// values) with accessors for the fields the plugin routes on, such as
// metadata annotations and pod template containers. [SplitYAML] converts raw
// YAML into [Object] maps, which need not carry a kind.
package kube
