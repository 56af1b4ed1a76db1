// Package execs runs external commands with the caller's standard streams
// attached, reporting the command's exit code.
//
// It backs the fallback `kubectl apply` and keeps the tracing and logging
// of every execution in one place.
package execs
