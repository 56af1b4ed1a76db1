// Package expr provides CEL (Common Expression Language) evaluation of
// boolean expressions against a decoded Kubernetes manifest.
//
// Expressions have access to the variable:
//   - `manifest` (map<string, dyn>): the decoded document
//
// and to the functions:
//   - annotations(map): metadata.annotations of a manifest, or an empty map
//   - containers(map): spec.template.spec.containers of a manifest, or an
//     empty list
//
// along with the CEL strings and lists extensions.
package expr
