package logging

import (
	"context"
	"log/slog"

	context_ "github.com/mkrupp/socialsvc/internal/infra/context"
)

// TracingHandler wraps another slog.Handler and adds the request's trace ID
// and client address, when the context carries them, to every record.
type TracingHandler struct {
	next slog.Handler
}

var _ slog.Handler = (*TracingHandler)(nil)

// NewTracingHandler creates a new TracingHandler wrapping the given handler.
func NewTracingHandler(next slog.Handler) *TracingHandler {
	return &TracingHandler{next: next}
}

// Handle implements slog.Handler.
func (h *TracingHandler) Handle(ctx context.Context, r slog.Record) error {
	var attrs []any

	if traceID, ok := context_.TraceIDFromContext(ctx); ok {
		attrs = append(attrs, slog.String("id", traceID))
	}

	if addr, ok := context_.ClientAddrFromContext(ctx); ok {
		attrs = append(attrs, slog.String("client", addr))
	}

	if len(attrs) > 0 {
		r.AddAttrs(slog.Group("trace", attrs...))
	}

	//nolint:wrapcheck
	return h.next.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.WithAttrs.
func (h *TracingHandler) WithAttrs(attrs []slog.Attr) Handler {
	return NewTracingHandler(h.next.WithAttrs(attrs))
}

// WithGroup implements slog.Handler.WithGroup.
func (h *TracingHandler) WithGroup(name string) Handler {
	return NewTracingHandler(h.next.WithGroup(name))
}

// Enabled implements slog.Handler.Enabled.
func (h *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}
