package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fluidos-project/kubectl-fluidos/pkg/input"
	"github.com/fluidos-project/kubectl-fluidos/pkg/intent"
	"github.com/fluidos-project/kubectl-fluidos/pkg/log"
	"github.com/fluidos-project/kubectl-fluidos/pkg/sniff"
)

const tracerName = "github.com/fluidos-project/kubectl-fluidos/pkg/dispatch"

// MsgNoInput is written when neither a file nor piped stdin was given.
// It matches the message kubectl prints in the same situation.
const MsgNoInput = "error: must specify one of -f and -k"

var ErrHandlerNotConfigured = errors.New("handler not configured")

type (
	// ApplyFunc forwards the invocation to `kubectl apply`. It receives
	// the full argument list and any stdin bytes already consumed.
	ApplyFunc func(ctx context.Context, args []string, stdin []byte) int

	// DocumentFunc processes a single classified document.
	DocumentFunc func(ctx context.Context, doc []byte) int
)

// Handlers holds the three routing targets. Unset handlers panic with
// [ErrHandlerNotConfigured] when selected.
type Handlers struct {
	OnApply  ApplyFunc
	OnMSPL   DocumentFunc
	OnIntent DocumentFunc
}

// Router selects and invokes one of its [Handlers] per invocation.
type Router struct {
	handlers  Handlers
	predicate intent.Predicate
	errOut    io.Writer
	logger    *slog.Logger
}

// Opt configures a [Router].
type Opt func(*Router)

// WithPredicate sets the intent detector. Defaults to [intent.HasIntent].
func WithPredicate(p intent.Predicate) Opt {
	return func(r *Router) {
		r.predicate = p
	}
}

// WithErrorStream sets where user-facing errors are written.
// Defaults to [os.Stderr].
func WithErrorStream(w io.Writer) Opt {
	return func(r *Router) {
		r.errOut = w
	}
}

// WithLogger sets the logger. Defaults to the logger in the dispatch
// context.
func WithLogger(l *slog.Logger) Opt {
	return func(r *Router) {
		r.logger = l
	}
}

// New creates a new [Router].
func New(h Handlers, opts ...Opt) *Router {
	r := &Router{
		handlers:  h,
		predicate: intent.HasIntent,
		errOut:    os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.predicate == nil {
		r.predicate = intent.HasIntent
	}

	if r.errOut == nil {
		r.errOut = io.Discard
	}

	if r.handlers.OnApply == nil {
		r.handlers.OnApply = unconfiguredApply()
	}

	if r.handlers.OnMSPL == nil {
		r.handlers.OnMSPL = unconfiguredDocument("mspl")
	}

	if r.handlers.OnIntent == nil {
		r.handlers.OnIntent = unconfiguredDocument("intent")
	}

	return r
}

// Dispatch resolves the manifest referenced by args and stdin and invokes
// the matching handler, returning its exit code.
func (r *Router) Dispatch(ctx context.Context, args []string, stdin io.Reader) int {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "dispatch",
		trace.WithAttributes(attribute.StringSlice("args", args)),
	)
	defer span.End()

	logger := r.logger
	if logger == nil {
		logger = log.WithContext(ctx)
	}

	in, err := input.Resolve(args, stdin)
	switch {
	case errors.Is(err, input.ErrNoInputProvided):
		r.fail(MsgNoInput)
		return 1
	case err != nil:
		r.fail(fmt.Sprintf("error: %v", err))
		return 1
	}

	route := RouteApply

	doc, ok := in.Single()
	if ok {
		route = r.classify(logger, doc)
	} else {
		logger.Debug("skip classification",
			slog.Int("documents", len(in.Documents())),
			slog.Any("opaque", in.Opaque),
		)
	}

	span.SetAttributes(attribute.String("route", route.String()))
	logger.Debug("dispatch",
		slog.String("route", route.String()),
	)

	switch route {
	case RouteMSPL:
		return r.handlers.OnMSPL(ctx, doc)
	case RouteIntent:
		return r.handlers.OnIntent(ctx, doc)
	case RouteApply:
	}

	return r.handlers.OnApply(ctx, args, in.Stdin)
}

// Route returns the route a single document takes.
func (r *Router) Route(doc []byte) Route {
	return r.classify(slog.New(slog.DiscardHandler), doc)
}

func (r *Router) classify(logger *slog.Logger, doc []byte) Route {
	logger.Debug("classify document",
		slog.String("size", humanize.Bytes(uint64(len(doc)))),
	)

	res, err := sniff.Classify(doc)
	if err != nil {
		logger.Info("unrecognized document, fall back to apply",
			slog.Any("err", err),
		)

		return RouteApply
	}

	switch res.Format {
	case sniff.MSPL:
		return RouteMSPL
	case sniff.K8S:
		if r.predicate(res.Manifest()) {
			return RouteIntent
		}
	case sniff.Unknown:
	}

	return RouteApply
}

func (r *Router) fail(msg string) {
	_, err := fmt.Fprintln(r.errOut, msg)
	if err != nil {
		slog.Error("write error message", slog.Any("err", err))
	}
}

func unconfiguredApply() ApplyFunc {
	return func(context.Context, []string, []byte) int {
		panic(unconfigured("apply"))
	}
}

func unconfiguredDocument(name string) DocumentFunc {
	return func(context.Context, []byte) int {
		panic(unconfigured(name))
	}
}

func unconfigured(name string) error {
	return fmt.Errorf("%s: %w", name, ErrHandlerNotConfigured)
}
