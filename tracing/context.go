package tracing

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// SpanFromContext retrieves the currently-executing Span stored in the
// context, if any, or a no-op Span.
func SpanFromContext(ctx context.Context) Span { return trace.SpanFromContext(ctx) }

// TracerProviderFromContext resolves the provider the span of a call is
// started with, when none is given to the TracerBuilder: the provider of the
// current span in ctx, unless that one is a no-op, or otherwise the global
// one from GetGlobalTracerProvider().
func TracerProviderFromContext(ctx context.Context) trace.TracerProvider {
	if tp := SpanFromContext(ctx).TracerProvider(); !isNoop(tp) {
		return tp
	}
	return GetGlobalTracerProvider()
}

// ContextWithTracerProvider injects the given TracerProvider into a new
// context descending from parent. The current Span of parent, if any, stays
// the parent of spans started from the returned context.
func ContextWithTracerProvider(parent context.Context, tp trace.TracerProvider) context.Context {
	return trace.ContextWithSpan(parent, &tracerProviderSpan{
		Span: SpanFromContext(parent),
		tp:   tp,
	})
}

// tracerProviderSpan is a composite Span just returning a static TracerProvider.
// This trick allows us to register a TracerProvider with a context, without a
// new context.Context.WithValue key.
type tracerProviderSpan struct {
	Span
	tp trace.TracerProvider
}

func (s *tracerProviderSpan) TracerProvider() trace.TracerProvider { return s.tp }
