package yaml

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/token"
)

func NewPathBuilder() *yaml.PathBuilder {
	return &yaml.PathBuilder{}
}

// Error represents a YAML error. It includes the original error, and either
// the [*token.Token] where a syntax error occurred or the [*yaml.Path] of a
// value that failed validation.
type Error struct {
	Err   error
	Path  *yaml.Path
	Token *token.Token
}

func (e Error) Error() string {
	if e.Err == nil {
		return ""
	}

	if e.Token != nil && e.Token.Position != nil {
		return fmt.Sprintf("[%d:%d] %v", e.Token.Position.Line, e.Token.Position.Column, e.Err)
	}

	if e.Path != nil {
		return fmt.Sprintf("error at %s: %v", e.Path.String(), e.Err)
	}

	return e.Err.Error()
}

func (e Error) Unwrap() error {
	return e.Err
}
