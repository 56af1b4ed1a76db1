package mspl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fluidos-project/kubectl-fluidos/pkg/log"
)

// ContentType of posted policies.
const ContentType = "application/xml"

// Processor posts MSPL documents to the orchestrator.
type Processor struct {
	client *http.Client
	out    io.Writer
	tracer trace.Tracer
	cfg    Configuration
}

// ProcessorOpt configures a [Processor].
type ProcessorOpt func(*Processor)

// WithHTTPClient sets the HTTP client. Defaults to [http.DefaultClient].
func WithHTTPClient(c *http.Client) ProcessorOpt {
	return func(p *Processor) {
		p.client = c
	}
}

// WithOutput sets where the outcome is reported. Defaults to [os.Stdout].
func WithOutput(w io.Writer) ProcessorOpt {
	return func(p *Processor) {
		p.out = w
	}
}

// NewProcessor creates a new [Processor].
func NewProcessor(cfg Configuration, opts ...ProcessorOpt) *Processor {
	p := &Processor{
		cfg:    cfg,
		client: http.DefaultClient,
		out:    os.Stdout,
		tracer: otel.Tracer("mspl"),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Process posts doc and returns 0 when the orchestrator answers 200 OK,
// or 1 otherwise.
func (p *Processor) Process(ctx context.Context, doc []byte) int {
	endpoint := p.cfg.Endpoint()

	ctx, span := p.tracer.Start(ctx, "mspl.process", trace.WithAttributes(
		attribute.String("endpoint", endpoint),
	))
	defer span.End()

	logger := log.WithContext(ctx).With(
		slog.String("endpoint", endpoint),
	)

	logger.InfoContext(ctx, "submit policy",
		slog.String("size", humanize.Bytes(uint64(len(doc)))),
	)

	status, body, err := p.post(ctx, endpoint, doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		logger.ErrorContext(ctx, "submit policy", slog.Any("err", err))

		return 1
	}

	span.SetAttributes(attribute.Int("http.status_code", status))

	switch {
	case status == http.StatusOK:
		logger.DebugContext(ctx, "policy accepted", slog.String("response", string(body)))

		_, err := fmt.Fprintf(p.out, "policy submitted to %s\n", endpoint)
		if err != nil {
			logger.ErrorContext(ctx, "write output", slog.Any("err", err))
		}

		return 0

	case status >= 400 && status < 500:
		logger.ErrorContext(ctx, "unable to retrieve correct resource",
			slog.Int("status", status),
			slog.String("response", string(body)),
		)

	case status >= 500:
		logger.ErrorContext(ctx, "error in the service",
			slog.Int("status", status),
			slog.String("response", string(body)),
		)

	default:
		logger.ErrorContext(ctx, "unexpected response",
			slog.Int("status", status),
		)
	}

	span.SetStatus(codes.Error, http.StatusText(status))

	return 1
}

func (p *Processor) post(ctx context.Context, endpoint string, doc []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(doc))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", ContentType)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("post: %w", err)
	}

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			slog.Debug("close response body", slog.Any("err", err))
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}

	return resp.StatusCode, body, nil
}
