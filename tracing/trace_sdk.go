package tracing

import (
	"context"

	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// provider starts spans through the outermost composite of the chain, while
// flushing and shutting down goes to the SDK provider at the bottom of it.
type provider struct {
	trace.TracerProvider
	sdk *tracesdk.TracerProvider
}

var _ TracerProvider = &provider{}

func (p *provider) Shutdown(ctx context.Context) error   { return p.sdk.Shutdown(ctx) }
func (p *provider) ForceFlush(ctx context.Context) error { return p.sdk.ForceFlush(ctx) }

// isNoop tells whether tp discards spans right away, which is the case for
// the provider of the span in a context without any span.
func isNoop(tp trace.TracerProvider) bool {
	switch tp.(type) {
	case nil, noop.TracerProvider:
		return true
	}
	return tp == noopProvider
}
