package instrument

import (
	"context"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel/trace"

	"github.com/luxas/deklarative/instrument/tracing"
)

// Context returns a new *ContextBuilder.
func Context() *ContextBuilder { return &ContextBuilder{} }

// ContextBuilder is a builder-pattern constructor for a context.Context,
// that possibly includes a TracerProvider and/or a Logger used by the
// instrumented calls advanced with it.
type ContextBuilder struct {
	from context.Context
	tp   trace.TracerProvider
	log  *logr.Logger
}

// From sets the "base context" to start applying context.WithValue operations
// to. By default this is context.Background().
func (b *ContextBuilder) From(ctx context.Context) *ContextBuilder {
	b.from = ctx
	return b
}

// WithTracerProvider registers a TracerProvider with the context.
func (b *ContextBuilder) WithTracerProvider(tp trace.TracerProvider) *ContextBuilder {
	b.tp = tp
	return b
}

// WithLogger registers a Logger with the context.
func (b *ContextBuilder) WithLogger(log logr.Logger) *ContextBuilder {
	b.log = &log
	return b
}

// Build builds the context.
func (b *ContextBuilder) Build() context.Context {
	ctx := b.from
	if ctx == nil {
		ctx = context.Background()
	}
	if b.tp != nil {
		ctx = tracing.ContextWithTracerProvider(ctx, b.tp)
	}
	if b.log != nil {
		ctx = logr.NewContext(ctx, *b.log)
	}
	return ctx
}
