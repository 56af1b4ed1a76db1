package execs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fluidos-project/kubectl-fluidos/pkg/log"
)

// Streams are the standard streams attached to an executed command.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// OSStreams returns the process's own standard streams.
func OSStreams() Streams {
	return Streams{
		In:  os.Stdin,
		Out: os.Stdout,
		Err: os.Stderr,
	}
}

type Executor struct {
	tracer trace.Tracer
	cmd    Command
}

func NewExecutor(cmd Command) Executor {
	return Executor{
		tracer: otel.Tracer("executor"),
		cmd:    cmd,
	}
}

// Run executes the command and waits for it to exit. It returns the exit
// code of the process. When the process could not be started, the code
// is 1 and the error wraps [ErrCommandExecution].
func (e Executor) Run(ctx context.Context, streams Streams) (int, error) {
	ctx, span := e.tracer.Start(ctx, "exec", trace.WithAttributes(
		attribute.String("command", e.String()),
	))
	defer span.End()

	if e.cmd.Command == "" {
		return 1, ErrEmptyCommand
	}

	logger := log.WithContext(ctx).With(
		slog.String("command", e.String()),
	)

	start := time.Now()

	//nolint:gosec // G204: Subprocess launched with a potential tainted input or cmd arguments.
	cmd := exec.CommandContext(ctx, e.cmd.Command, e.cmd.Args...)
	cmd.Env = e.cmd.Env
	cmd.Stdin = streams.In
	cmd.Stdout = streams.Out
	cmd.Stderr = streams.Err

	err := cmd.Run()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// Killed by a signal.
			code = 1
		}

		span.SetAttributes(attribute.Int("exit_code", code))
		logger.DebugContext(ctx, "command exited",
			slog.Duration("duration", time.Since(start)),
			slog.Int("exit_code", code),
		)

		return code, nil
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "command failed to start")
		logger.DebugContext(ctx, "command failed",
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		)

		return 1, fmt.Errorf("%w: %w", ErrCommandExecution, err)
	}

	span.SetAttributes(attribute.Int("exit_code", 0))
	logger.DebugContext(ctx, "command executed successfully",
		slog.Duration("duration", time.Since(start)),
	)

	return 0, nil
}

func (e Executor) String() string {
	return e.cmd.String()
}
