// Package input locates the manifest a kubectl-fluidos invocation refers
// to, either through `-f`/`--filename` arguments or standard input.
package input
