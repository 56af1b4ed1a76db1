// Package dispatch routes a kubectl-fluidos invocation to exactly one
// handler: the MSPL processor, the model-based processor, or the fallback
// `kubectl apply`.
package dispatch
