package tracing

import (
	"context"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// AcquireLoggerFunc represents a function that can resolve a logr.Logger
// from the given context. Two common implementations are
// logr.FromContextOrDiscard and logcall.LoggerFromContext.
type AcquireLoggerFunc func(context.Context) logr.Logger

// NewLoggingTracerProvider is a composite TracerProvider which logs the
// lifecycle of every span it starts, using the Logger acquireFn resolves
// from the context the span was started in. If acquireFn is nil,
// logr.FromContextOrDiscard is used.
//
// The span lifecycle is logged at verbosity level 1, such that it doesn't
// mix with the call logs at the default level.
func NewLoggingTracerProvider(tp trace.TracerProvider, acquireFn AcquireLoggerFunc) trace.TracerProvider {
	if acquireFn == nil {
		acquireFn = logr.FromContextOrDiscard
	}
	return &loggingTracerProvider{tp, acquireFn}
}

type loggingTracerProvider struct {
	trace.TracerProvider
	acquireFn AcquireLoggerFunc
}

func (tp *loggingTracerProvider) Tracer(instrumentationName string, opts ...trace.TracerOption) trace.Tracer {
	return &loggingTracer{tp.TracerProvider.Tracer(instrumentationName, opts...), tp}
}

type loggingTracer struct {
	trace.Tracer
	provider *loggingTracerProvider
}

func (t *loggingTracer) Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	log := t.provider.acquireFn(ctx).WithName(spanName).V(1)

	// When starting up, log all given attributes.
	spanCfg := trace.NewSpanStartConfig(opts...)
	startLog := log
	if attrs := spanCfg.Attributes(); len(attrs) != 0 {
		startLog = startLog.WithValues(kvListToLogAttrs(attrs)...)
	}
	startLog.Info("starting span")

	// Call the composite tracer, but swap out the returned span for ours, both in the
	// return value and context.
	ctx, span := t.Tracer.Start(ctx, spanName, opts...)
	logSpan := &loggingSpan{span, t.provider, log}
	return trace.ContextWithSpan(ctx, logSpan), logSpan
}

type loggingSpan struct {
	trace.Span
	provider trace.TracerProvider
	log      logr.Logger
}

const (
	spanStatusCodeKey        = "span-status-code"
	spanStatusDescriptionKey = "span-status-description"
	spanAttributePrefix      = "span-attr-"
)

func (s *loggingSpan) End(options ...trace.SpanEndOption) {
	s.log.Info("ending span")
	s.Span.End(options...)
}

func (s *loggingSpan) RecordError(err error, options ...trace.EventOption) {
	s.log.Info("span error", "error", err.Error())
	s.Span.RecordError(err, options...)
}

func (s *loggingSpan) SetStatus(code codes.Code, description string) {
	s.log.Info("span status change",
		spanStatusCodeKey, code.String(),
		spanStatusDescriptionKey, description)
	s.Span.SetStatus(code, description)
}

func (s *loggingSpan) SetAttributes(kv ...attribute.KeyValue) {
	s.log.Info("span attribute change", kvListToLogAttrs(kv)...)
	s.Span.SetAttributes(kv...)
}

func (s *loggingSpan) TracerProvider() trace.TracerProvider { return s.provider }

// Unwrap returns the span this span logs for.
func (s *loggingSpan) Unwrap() trace.Span { return s.Span }

func kvListToLogAttrs(kv []attribute.KeyValue) []interface{} {
	attrs := make([]interface{}, 0, len(kv)*2)
	for _, item := range kv {
		attrs = append(attrs, spanAttributePrefix+string(item.Key), item.Value.AsInterface())
	}
	return attrs
}
