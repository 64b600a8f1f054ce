package tracing

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// Span is a symbolic link to trace.Span.
type Span = trace.Span

// TracerProvider is the provider built by TracerProviderBuilder. It starts
// the spans of instrumented calls, and flushes them to the exporters when
// asked to.
type TracerProvider interface {
	trace.TracerProvider

	// Shutdown exports all pending spans and stops the exporters.
	Shutdown(ctx context.Context) error
	// ForceFlush exports all ended spans that haven't been exported yet.
	ForceFlush(ctx context.Context) error
}
