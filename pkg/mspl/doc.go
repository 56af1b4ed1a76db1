// Package mspl submits MSPL policy documents to the FLUIDOS policy
// orchestrator over HTTP.
//
// The orchestrator endpoint is resolved from, in order: an explicit URL,
// explicit hostname/port/schema parts, the host of the current kubeconfig
// cluster, and finally localhost.
package mspl
