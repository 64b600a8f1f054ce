package tracing

import (
	"context"
	"io"
	"math/rand"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"

	"github.com/luxas/deklarative/instrument/filetest"
	"github.com/luxas/deklarative/instrument/tracing/traceyaml"
)

// DefaultServiceName is the "service.name" resource attribute of providers
// built without WithServiceName.
const DefaultServiceName = "instrument"

// Default collector addresses of the OTLP exporters.
const (
	DefaultOTLPGRPCEndpoint = "localhost:4317"
	DefaultOTLPHTTPEndpoint = "localhost:4318"
)

// CompositeTracerProviderFunc wraps the provider built so far, for example to
// observe every span started for an instrumented call.
type CompositeTracerProviderFunc func(trace.TracerProvider) trace.TracerProvider

// Provider returns a new *TracerProviderBuilder.
func Provider() *TracerProviderBuilder {
	return &TracerProviderBuilder{}
}

// TracerProviderBuilder builds the TracerProvider the spans of instrumented
// calls are collected by. The spans are exported to stdout, or to an
// OpenTelemetry Collector over gRPC or HTTP, and can be observed by extra
// span processors or composite providers.
type TracerProviderBuilder struct {
	exporters  []tracesdk.SpanExporter
	processors []tracesdk.SpanProcessor
	errs       []error
	attrs      []attribute.KeyValue
	idGen      tracesdk.IDGenerator
	sync       bool
	composites []CompositeTracerProviderFunc
}

// WithInsecureOTLPGRPCExporter exports spans over gRPC, without TLS, to the
// collector at addr ("host:port"), DefaultOTLPGRPCEndpoint if empty. opts
// are applied after the defaults.
func (b *TracerProviderBuilder) WithInsecureOTLPGRPCExporter(ctx context.Context, addr string, opts ...otlptracegrpc.Option) *TracerProviderBuilder {
	if addr == "" {
		addr = DefaultOTLPGRPCEndpoint
	}
	opts = append([]otlptracegrpc.Option{otlptracegrpc.WithEndpoint(addr), otlptracegrpc.WithInsecure()}, opts...)
	return b.addExporter(otlptracegrpc.New(ctx, opts...))
}

// WithInsecureOTLPHTTPExporter exports spans over HTTP, without TLS, to the
// collector at addr ("host:port"), DefaultOTLPHTTPEndpoint if empty. opts
// are applied after the defaults.
func (b *TracerProviderBuilder) WithInsecureOTLPHTTPExporter(ctx context.Context, addr string, opts ...otlptracehttp.Option) *TracerProviderBuilder {
	if addr == "" {
		addr = DefaultOTLPHTTPEndpoint
	}
	opts = append([]otlptracehttp.Option{otlptracehttp.WithEndpoint(addr), otlptracehttp.WithInsecure()}, opts...)
	return b.addExporter(otlptracehttp.New(ctx, opts...))
}

// WithStdoutExporter writes every exported span as indented JSON to
// os.Stdout, or the writer given with stdouttrace.WithWriter.
func (b *TracerProviderBuilder) WithStdoutExporter(opts ...stdouttrace.Option) *TracerProviderBuilder {
	opts = append([]stdouttrace.Option{stdouttrace.WithPrettyPrint()}, opts...)
	return b.addExporter(stdouttrace.New(opts...))
}

// addExporter registers exp, or remembers err to be returned by Build.
func (b *TracerProviderBuilder) addExporter(exp tracesdk.SpanExporter, err error) *TracerProviderBuilder {
	if err != nil {
		b.errs = append(b.errs, err)
	} else {
		b.exporters = append(b.exporters, exp)
	}
	return b
}

// WithSpanProcessor registers a processor seeing every span as it starts
// and ends, next to the exporters. tracetest.SpanRecorder is one.
//
// A call to this function appends to the list of previous values.
func (b *TracerProviderBuilder) WithSpanProcessor(sp tracesdk.SpanProcessor) *TracerProviderBuilder {
	b.processors = append(b.processors, sp)
	return b
}

// WithAttributes adds resource attributes describing the process the calls
// run in.
//
// A call to this function appends to the list of previous values.
func (b *TracerProviderBuilder) WithAttributes(attrs ...attribute.KeyValue) *TracerProviderBuilder {
	b.attrs = append(b.attrs, attrs...)
	return b
}

// WithServiceName sets the "service.name" resource attribute.
func (b *TracerProviderBuilder) WithServiceName(name string) *TracerProviderBuilder {
	return b.WithAttributes(semconv.ServiceName(name))
}

// Synchronous exports every span in the call to End, instead of in batches.
// Meant for tests and short-lived programs.
func (b *TracerProviderBuilder) Synchronous() *TracerProviderBuilder {
	b.sync = true
	return b
}

// Composite wraps the built provider using fn. Composites are applied in
// the order they are registered, so the last one registered is outermost.
func (b *TracerProviderBuilder) Composite(fn CompositeTracerProviderFunc) *TracerProviderBuilder {
	b.composites = append(b.composites, fn)
	return b
}

// LogSpans logs the lifecycle of every span at verbosity 1, using the Logger
// acquireFn resolves from the context. See NewLoggingTracerProvider.
func (b *TracerProviderBuilder) LogSpans(acquireFn AcquireLoggerFunc) *TracerProviderBuilder {
	return b.Composite(func(tp trace.TracerProvider) trace.TracerProvider {
		return NewLoggingTracerProvider(tp, acquireFn)
	})
}

// TestYAMLTo writes every finished trace as YAML to w. See traceyaml.New.
func (b *TracerProviderBuilder) TestYAMLTo(w io.Writer) *TracerProviderBuilder {
	return b.Composite(func(tp trace.TracerProvider) trace.TracerProvider {
		return traceyaml.New(tp, w)
	})
}

// TestYAML writes every finished trace as YAML to the golden file
// testdata/<test name>.yaml of g.
func (b *TracerProviderBuilder) TestYAML(g *filetest.Tester) *TracerProviderBuilder {
	return b.TestYAMLTo(g.Add(g.T.Name() + ".yaml").Writer())
}

// DeterministicIDs generates trace and span IDs from a random source seeded
// with seed. Never use it outside of tests.
func (b *TracerProviderBuilder) DeterministicIDs(seed int64) *TracerProviderBuilder {
	//nolint:gosec
	b.idGen = &seededIDGenerator{rnd: rand.New(rand.NewSource(seed))}
	return b
}

// Build builds the TracerProvider, or returns the combined errors of the
// exporters that couldn't be created.
func (b *TracerProviderBuilder) Build() (TracerProvider, error) {
	if err := multierr.Combine(b.errs...); err != nil {
		return nil, err
	}

	// Spans need an exporter to be ended properly; discard them if none is set.
	exporters := b.exporters
	if len(exporters) == 0 {
		exp, err := stdouttrace.New(stdouttrace.WithWriter(io.Discard))
		if err != nil {
			return nil, err
		}
		exporters = []tracesdk.SpanExporter{exp}
	}

	attrs := append([]attribute.KeyValue{semconv.ServiceName(DefaultServiceName)}, b.attrs...)
	opts := []tracesdk.TracerProviderOption{
		tracesdk.WithResource(resource.NewWithAttributes(semconv.SchemaURL, attrs...)),
	}
	for _, exp := range exporters {
		if b.sync {
			opts = append(opts, tracesdk.WithSyncer(exp))
		} else {
			opts = append(opts, tracesdk.WithBatcher(exp))
		}
	}
	for _, sp := range b.processors {
		opts = append(opts, tracesdk.WithSpanProcessor(sp))
	}
	if b.idGen != nil {
		opts = append(opts, tracesdk.WithIDGenerator(b.idGen))
	}

	sdk := tracesdk.NewTracerProvider(opts...)
	var tp trace.TracerProvider = sdk
	for _, fn := range b.composites {
		tp = fn(tp)
	}
	return &provider{TracerProvider: tp, sdk: sdk}, nil
}

type seededIDGenerator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

var _ tracesdk.IDGenerator = &seededIDGenerator{}

func (g *seededIDGenerator) NewIDs(context.Context) (tid trace.TraceID, sid trace.SpanID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, _ = g.rnd.Read(tid[:])
	_, _ = g.rnd.Read(sid[:])
	return tid, sid
}

func (g *seededIDGenerator) NewSpanID(context.Context, trace.TraceID) (sid trace.SpanID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, _ = g.rnd.Read(sid[:])
	return sid
}
