package instrument

import (
	"context"
	"errors"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/zoobzio/clockz"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/luxas/deklarative/instrument/async"
	"github.com/luxas/deklarative/instrument/logcall"
	"github.com/luxas/deklarative/instrument/tracing"
)

// ErrSuspended is returned by FuncBuilder.Do when the computation didn't
// complete on its first Advance.
var ErrSuspended = errors.New("instrument: computation suspended during a synchronous call")

// Instrument is one layer of instrumentation; it wraps a computation into a
// computation with the same result type.
type Instrument[T any] func(async.Computation[T]) async.Computation[T]

// Compose wraps base with the given instruments, the first instrument being
// the outermost layer. Advancing the result advances the first instrument,
// which advances the second one, and so on until base is advanced.
//
// Compose(base) returns base itself.
func Compose[T any](base async.Computation[T], instruments ...Instrument[T]) async.Computation[T] {
	c := base
	for i := len(instruments) - 1; i >= 0; i-- {
		c = instruments[i](c)
	}
	return c
}

// Log returns an Instrument logging the call boundaries. See logcall.Wrap.
func Log[T any](b *logcall.Builder) Instrument[T] {
	return func(c async.Computation[T]) async.Computation[T] {
		return logcall.Wrap(b, c)
	}
}

// Trace returns an Instrument tracing the call with a span. See tracing.Wrap.
func Trace[T any](b *tracing.TracerBuilder) Instrument[T] {
	return func(c async.Computation[T]) async.Computation[T] {
		return tracing.Wrap(b, c)
	}
}

// Func returns a new *FuncBuilder for instrumenting calls to the function
// fnName, returning a value of type T.
func Func[T any](fnName string) *FuncBuilder[T] {
	return &FuncBuilder[T]{name: fnName, newCallID: uuid.NewString}
}

// FuncBuilder configures both the logging and the tracing of calls to one
// function. Every call gets its own call identifier, which is shared by the
// log records and the span of the call.
type FuncBuilder[T any] struct {
	name      string
	actor     interface{}
	sink      logcall.Sink
	panicHook func(logcall.Record, interface{})
	tpHook    func(string, interface{})
	args      []interface{}
	tp        trace.TracerProvider
	attrs     []attribute.KeyValue
	clock     clockz.Clock
	newCallID func() string
}

// WithActor registers an "actor" for the given function that is
// instrumented.
//
// If the function instrumented is called e.g. Read and the struct
// implementing Read is *FooReader, then *FooReader is the actor.
//
// In order to make the span and logger name "*FooReader.Read", and
// not just an ambiguous "Read", pass the *FooReader as actor here.
//
// If the actor implements TracerNamed, the return value of that will
// be used. If actor is a string, that name is used. If actor
// is a os.Std{in,out,err} or io.Discard, those human-friendly names
// are used. Otherwise, the type name is resolved by
// fmt.Sprintf("%T", actor), which automatically registers the package
// and type name.
func (b *FuncBuilder[T]) WithActor(actor interface{}) *FuncBuilder[T] {
	b.actor = actor
	return b
}

// WithSink sets the logcall.Sink the log records are emitted to.
//
// A call to this function overwrites any previous value, including the
// one set by WithLogger.
func (b *FuncBuilder[T]) WithSink(sink logcall.Sink) *FuncBuilder[T] {
	b.sink = sink
	return b
}

// WithLogger makes the records be logged to log, instead of the Logger
// acquired from the context.
//
// A call to this function overwrites any previous value, including the
// one set by WithSink.
func (b *FuncBuilder[T]) WithLogger(log logr.Logger) *FuncBuilder[T] {
	return b.WithSink(logcall.NewLogrSink(log))
}

// OnSinkPanic registers a function called if the sink panics while
// emitting a record. See logcall.Builder.OnSinkPanic.
//
// A call to this function overwrites any previous value.
func (b *FuncBuilder[T]) OnSinkPanic(hook func(rec logcall.Record, r interface{})) *FuncBuilder[T] {
	b.panicHook = hook
	return b
}

// OnCollectorPanic registers a function called if the TracerProvider or its
// span processors panic while the span of a call is started or ended. See
// tracing.TracerBuilder.OnCollectorPanic.
//
// A call to this function overwrites any previous value.
func (b *FuncBuilder[T]) OnCollectorPanic(hook func(spanName string, r interface{})) *FuncBuilder[T] {
	b.tpHook = hook
	return b
}

// WithArgs registers key-value pairs describing the call's inputs, which are
// attached to the entry record.
//
// A call to this function appends to the list of previous values.
func (b *FuncBuilder[T]) WithArgs(keysAndValues ...interface{}) *FuncBuilder[T] {
	b.args = append(b.args, keysAndValues...)
	return b
}

// WithTracerProvider specifies the TracerProvider spans are started with.
// By default it is resolved using tracing.TracerProviderFromContext.
//
// A call to this function overwrites any previous value.
func (b *FuncBuilder[T]) WithTracerProvider(tp trace.TracerProvider) *FuncBuilder[T] {
	b.tp = tp
	return b
}

// WithAttributes registers attributes set on every span when it starts.
//
// A call to this function appends to the list of previous values.
func (b *FuncBuilder[T]) WithAttributes(attrs ...attribute.KeyValue) *FuncBuilder[T] {
	b.attrs = append(b.attrs, attrs...)
	return b
}

// WithClock sets the clock both the log records and the span are
// timestamped with.
//
// A call to this function overwrites any previous value.
func (b *FuncBuilder[T]) WithClock(clock clockz.Clock) *FuncBuilder[T] {
	b.clock = clock
	return b
}

// WithCallIDs sets the function generating the identifier of every call.
// The default is uuid.NewString.
//
// A call to this function overwrites any previous value.
func (b *FuncBuilder[T]) WithCallIDs(fn func() string) *FuncBuilder[T] {
	b.newCallID = fn
	return b
}

// Name returns the name the log records and spans of the calls get.
func (b *FuncBuilder[T]) Name() string {
	return fmtSpanName(tracerName(b.actor), b.name)
}

// Wrap instruments one call, which base computes. The call is logged, and
// within the logged call it is traced:
//
//	Compose(base, Log(call), Trace(span))
//
// Hence the entry record is emitted before the span starts, and the exit or
// error record after the span has ended.
func (b *FuncBuilder[T]) Wrap(base async.Computation[T]) async.Computation[T] {
	name := b.Name()
	id := b.newCallID()

	call := logcall.Call(name).
		WithCallID(id).
		WithSink(b.sink).
		WithArgs(b.args...).
		WithClock(b.clock).
		OnSinkPanic(b.panicHook)
	span := tracing.Tracer(name).
		WithCallID(id).
		WithTracerProvider(b.tp).
		WithAttributes(b.attrs...).
		WithClock(b.clock).
		OnCollectorPanic(b.tpHook)

	return Compose(base, Log[T](call), Trace[T](span))
}

// Do instruments the call c computes, and advances it once. It is meant for
// synchronous calls: if c suspends, ErrSuspended is returned. The call then
// stays in progress, that is, no exit record is logged and the span is not
// ended.
func (b *FuncBuilder[T]) Do(ctx context.Context, c async.Computation[T]) (T, error) {
	p, err := b.Wrap(c).Advance(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if !p.Complete() {
		var zero T
		return zero, ErrSuspended
	}
	return p.Result()
}

// Call invokes fn as an instrumented, synchronous call.
func (b *FuncBuilder[T]) Call(ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	return b.Do(ctx, async.Func(fn))
}
