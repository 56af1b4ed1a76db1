// Package sniff classifies a raw manifest as an MSPL policy (XML) or a
// Kubernetes manifest (YAML).
//
// XML is attempted first, so a document that is valid as both is treated as
// MSPL. Each parse attempt returns an explicit outcome; an input that fails
// both yields [ErrUnknownFormat].
package sniff
