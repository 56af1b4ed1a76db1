// Package config provides the optional configuration file for
// kubectl-fluidos.
//
// The file lives at $XDG_CONFIG_HOME/kubectl-fluidos/config.yaml and is
// validated against a JSON schema reflected from [Config] before it is
// loaded. Every value can be overridden by flags and environment variables.
package config
