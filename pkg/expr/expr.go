package expr

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/fluidos-project/kubectl-fluidos/pkg/kube"
)

// Protect CEL environment creation and compilation from concurrent access.
var celMutex sync.Mutex

var ErrNotBool = errors.New("expression did not evaluate to a bool")

// Environment provides a thread-safe wrapper around a [*cel.Env].
type Environment struct {
	env *cel.Env
}

// NewEnvironment creates a new [Environment] with the manifest library.
func NewEnvironment(opts ...cel.EnvOption) (*Environment, error) {
	celMutex.Lock()
	defer celMutex.Unlock()

	opts = append(opts, cel.Lib(&lib{}))

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	return &Environment{env: env}, nil
}

// Compile compiles a boolean CEL expression into a [Program].
func (e *Environment) Compile(expression string) (*Program, error) {
	celMutex.Lock()
	defer celMutex.Unlock()

	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile expression: %w", issues.Err())
	}

	if !ast.OutputType().IsExactType(cel.BoolType) && !ast.OutputType().IsExactType(cel.DynType) {
		return nil, fmt.Errorf("%w: %s", ErrNotBool, ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("create program: %w", err)
	}

	return &Program{expression: expression, program: program}, nil
}

// Program is a compiled boolean expression.
type Program struct {
	program    cel.Program
	expression string
}

// Eval evaluates the program against manifest.
func (p *Program) Eval(manifest kube.Object) (bool, error) {
	if manifest == nil {
		manifest = kube.Object{}
	}

	out, _, err := p.program.Eval(map[string]any{
		VarManifest: map[string]any(manifest),
	})
	if err != nil {
		return false, fmt.Errorf("evaluate %q: %w", p.expression, err)
	}

	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrNotBool, p.expression)
	}

	return b, nil
}

func (p *Program) String() string {
	return p.expression
}
