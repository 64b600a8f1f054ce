package tracing

import (
	"context"
	"time"

	"github.com/zoobzio/clockz"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/luxas/deklarative/instrument/async"
)

// ScopeName is the instrumentation scope of the Tracer spans are started
// with.
const ScopeName = "github.com/luxas/deklarative/instrument/tracing"

/*
	If TracerBuilder.WithTracerProvider is set, that provider is used.
	If the context carries a Span with a non-noop TracerProvider, it'll be used
	   (this is how chaining of spans work, also across suspensions).
	If SetGlobalTracerProvider is set, it'll be used.
	Otherwise, the global delegating TracerProvider of otel is used, which
	   discards spans until a real provider is registered.
*/

// TracerBuilder configures the Span instrument.
type TracerBuilder struct {
	name   string
	tp     trace.TracerProvider
	clock  clockz.Clock
	callID string

	spanStartOpts []trace.SpanStartOption
	panicHook     func(spanName string, r interface{})
}

// Tracer returns a new *TracerBuilder for spans named fnName.
func Tracer(fnName string) *TracerBuilder {
	return &TracerBuilder{name: fnName, clock: clockz.RealClock}
}

// WithTracerProvider specifies a TracerProvider to use in the trace process.
// By default, TracerProviderFromContext is used on the first Advance.
//
// A call to this function overwrites any previous value.
func (b *TracerBuilder) WithTracerProvider(tp trace.TracerProvider) *TracerBuilder {
	b.tp = tp
	return b
}

// WithAttributes registers attributes that are added as
// trace.SpanStartOptions automatically.
//
// A call to this function appends to the list of previous values.
func (b *TracerBuilder) WithAttributes(attrs ...attribute.KeyValue) *TracerBuilder {
	return b.WithSpanStartOptions(trace.WithAttributes(attrs...))
}

// WithSpanStartOptions registers options used when starting the span, for
// example trace.WithSpanKind. A start timestamp given here is overridden by
// the one of the clock.
//
// A call to this function appends to the list of previous values.
func (b *TracerBuilder) WithSpanStartOptions(opts ...trace.SpanStartOption) *TracerBuilder {
	b.spanStartOpts = append(b.spanStartOpts, opts...)
	return b
}

// WithCallID registers the identifier of the call with the span, under
// CallIDKey. The same identifier is used by the log records of the call.
//
// A call to this function overwrites any previous value.
func (b *TracerBuilder) WithCallID(id string) *TracerBuilder {
	b.callID = id
	return b
}

// WithClock sets the clock the span start and end timestamps are read from.
//
// A call to this function overwrites any previous value.
func (b *TracerBuilder) WithClock(clock clockz.Clock) *TracerBuilder {
	b.clock = clock
	return b
}

// OnCollectorPanic registers a function called with the span name and the
// recovered value if the TracerProvider, or a span processor or exporter
// behind it, panics while the span is started or ended. Such panics never
// reach the traced call. If starting the span panicked, the call runs
// untraced in the context it was advanced with.
//
// A call to this function overwrites any previous value.
func (b *TracerBuilder) OnCollectorPanic(hook func(spanName string, r interface{})) *TracerBuilder {
	b.panicHook = hook
	return b
}

// Name returns the name of the spans started.
func (b *TracerBuilder) Name() string { return b.name }

// Wrap returns a Computation tracing c with exactly one span.
//
// The span is started on the first Advance, as a child of the span in the
// context given to Advance. While c is advanced, the span is the current span
// of the context c sees. When c completes, the span is ended with its outcome,
// and handed to the collector of the TracerProvider.
//
// An internal fault of c ends the span as failed and is returned unchanged.
// The configuration of b is copied; changing b afterwards doesn't affect the
// returned Computation.
func Wrap[T any](b *TracerBuilder, c async.Computation[T]) *SpanComputation[T] {
	cfg := *b
	cfg.spanStartOpts = append([]trace.SpanStartOption(nil), b.spanStartOpts...)
	if cfg.clock == nil {
		cfg.clock = clockz.RealClock
	}
	return &SpanComputation[T]{inner: c, b: &cfg}
}

// SpanComputation is an async.Computation traced by a span.
type SpanComputation[T any] struct {
	inner async.Computation[T]
	b     *TracerBuilder

	span *spanState
	done bool
}

var _ async.Computation[any] = &SpanComputation[any]{}

// Advance implements async.Computation.
func (c *SpanComputation[T]) Advance(ctx context.Context) (async.Poll[T], error) {
	if c.done {
		return async.Poll[T]{}, async.ErrInvalidState
	}
	if c.span == nil {
		c.span = c.start(ctx)
	}

	// The derived context goes to c.inner only; ctx itself stays untouched,
	// so the caller's current span is the same after returning.
	innerCtx := ctx
	if c.span.span != nil {
		innerCtx = trace.ContextWithSpan(ctx, c.span.span)
	}
	p, err := c.inner.Advance(innerCtx)
	switch {
	case err != nil:
		c.done = true
		_ = c.span.close(err)
	case p.Complete():
		c.done = true
		if closeErr := c.span.close(p.Err()); closeErr != nil {
			return p, closeErr
		}
	}
	return p, err
}

// SpanContext returns the identity of the span, or an invalid SpanContext
// if the Computation hasn't been advanced yet.
func (c *SpanComputation[T]) SpanContext() trace.SpanContext {
	if c.span == nil || c.span.span == nil {
		return trace.SpanContext{}
	}
	return c.span.span.SpanContext()
}

// Duration returns the time between the first Advance and the completion of
// the Computation. It fails with ErrSpanOpen until the span is closed.
func (c *SpanComputation[T]) Duration() (time.Duration, error) {
	if c.span == nil {
		return 0, ErrSpanOpen
	}
	return c.span.duration()
}

func (c *SpanComputation[T]) start(ctx context.Context) *spanState {
	name := fmtName(c.b.name)
	s := &spanState{name: name, clock: c.b.clock, start: c.b.clock.Now(), panicHook: c.b.panicHook}

	// The timestamp and call ID come after the builder options, such that
	// they have the highest priority.
	opts := make([]trace.SpanStartOption, 0, len(c.b.spanStartOpts)+2)
	opts = append(opts, c.b.spanStartOpts...)
	opts = append(opts, trace.WithTimestamp(s.start))
	if c.b.callID != "" {
		opts = append(opts, trace.WithAttributes(CallIDKey.String(c.b.callID)))
	}

	s.guard(func() {
		tp := c.b.tp
		if tp == nil {
			tp = TracerProviderFromContext(ctx)
		}
		_, s.span = tp.Tracer(ScopeName).Start(ctx, name, opts...)
	})
	return s
}

func fmtName(name string) string {
	if len(name) != 0 {
		return name
	}
	return "<unnamed_span>"
}
