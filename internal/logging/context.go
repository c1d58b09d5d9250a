package logging

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	graphNameKey ctxKey = iota
	definitionKey
	componentKey
)

// WithGraphName returns a context with the graph name set.
func WithGraphName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, graphNameKey, name)
}

// WithDefinition returns a context with the definition name set.
func WithDefinition(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, definitionKey, name)
}

// WithComponent returns a context with the component name set.
func WithComponent(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, componentKey, name)
}

// GraphName extracts the graph name from the context, or "" if absent.
func GraphName(ctx context.Context) string {
	v, _ := ctx.Value(graphNameKey).(string)
	return v
}

// Definition extracts the definition name from the context, or "" if absent.
func Definition(ctx context.Context) string {
	v, _ := ctx.Value(definitionKey).(string)
	return v
}

// Component extracts the component name from the context, or "" if absent.
func Component(ctx context.Context) string {
	v, _ := ctx.Value(componentKey).(string)
	return v
}

// LogWith returns a logger enriched with correlation fields from the context.
// Only non-empty values are added as attributes.
func LogWith(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if g := GraphName(ctx); g != "" {
		logger = logger.With(slog.String("graph_name", g))
	}
	if d := Definition(ctx); d != "" {
		logger = logger.With(slog.String("definition", d))
	}
	if c := Component(ctx); c != "" {
		logger = logger.With(slog.String("component", c))
	}
	return logger
}

// CorrelationHandler wraps an slog.Handler, automatically injecting
// correlation fields from the context into every log record.
// Use with slog.New(NewCorrelationHandler(inner)) so callers can use
// logger.InfoContext(ctx, ...) and the fields appear automatically.
type CorrelationHandler struct {
	inner slog.Handler
}

// NewCorrelationHandler wraps the given handler with automatic correlation field injection.
func NewCorrelationHandler(inner slog.Handler) *CorrelationHandler {
	return &CorrelationHandler{inner: inner}
}

func (h *CorrelationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *CorrelationHandler) Handle(ctx context.Context, r slog.Record) error {
	if v := GraphName(ctx); v != "" {
		r.AddAttrs(slog.String("graph_name", v))
	}
	if v := Definition(ctx); v != "" {
		r.AddAttrs(slog.String("definition", v))
	}
	if v := Component(ctx); v != "" {
		r.AddAttrs(slog.String("component", v))
	}
	return h.inner.Handle(ctx, r)
}

func (h *CorrelationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *CorrelationHandler) WithGroup(name string) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithGroup(name)}
}
