// Package intent decides whether a parsed Kubernetes manifest declares
// FLUIDOS intents and must therefore be routed to the model-based
// orchestrator instead of plain `kubectl apply`.
package intent
