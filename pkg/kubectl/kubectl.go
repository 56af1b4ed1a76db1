// Package kubectl forwards manifests that need no FLUIDOS processing to
// `kubectl apply`.
package kubectl

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/fluidos-project/kubectl-fluidos/pkg/execs"
	"github.com/fluidos-project/kubectl-fluidos/pkg/log"
)

// DefaultCommand is the kubectl command line used when none is configured.
const DefaultCommand = "kubectl"

// Applier runs `kubectl apply`.
type Applier struct {
	streams execs.Streams
	cmd     execs.Command
}

// ApplierOpt configures an [Applier].
type ApplierOpt func(*Applier)

// WithStreams sets the streams attached to kubectl.
// Defaults to [execs.OSStreams].
func WithStreams(s execs.Streams) ApplierOpt {
	return func(a *Applier) {
		a.streams = s
	}
}

// NewApplier creates an [Applier] for the kubectl command line, which is
// parsed as shell words.
func NewApplier(command string, opts ...ApplierOpt) (*Applier, error) {
	cmd, err := execs.ParseCommand(command)
	if err != nil {
		return nil, err //nolint:wrapcheck // Already wrapped.
	}

	a := &Applier{
		cmd:     cmd,
		streams: execs.OSStreams(),
	}
	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// Apply runs `kubectl apply` with args. When stdin holds bytes already
// consumed from standard input, they are piped to kubectl in its place.
// It returns the exit code of kubectl, or 1 when it could not be started.
func (a *Applier) Apply(ctx context.Context, args []string, stdin []byte) int {
	streams := a.streams
	if len(stdin) > 0 {
		streams.In = bytes.NewReader(stdin)
	}

	cmd := a.cmd.WithArgs(append([]string{"apply"}, args...)...)

	code, err := execs.NewExecutor(cmd).Run(ctx, streams)
	if err != nil {
		log.WithContext(ctx).ErrorContext(ctx, "run kubectl",
			slog.String("command", cmd.String()),
			slog.Any("err", err),
		)
	}

	return code
}

// Command returns the command line Apply runs, without the apply arguments.
func (a *Applier) Command() execs.Command {
	return a.cmd
}
