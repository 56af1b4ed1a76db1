// Package modelbased hands manifests that declare FLUIDOS intents to the
// model-based meta-orchestrator, by wrapping them into a FLUIDOSDeployment
// custom resource and creating it in the cluster.
package modelbased
