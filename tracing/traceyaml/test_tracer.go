// Package traceyaml provides a means to unit test a trace flow, using a YAML file
// structure that is representative and as close to human-readable as it gets.
//
// This package is tested by unit tests in the above tracing package.
package traceyaml

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v2"
)

// New returns a composite TracerProvider that captures all data written into
// spans created. The recursively captured span/trace data is gathered into a
// SpanInfo struct, marshalled into YAML, and written to w. Writer w can optionally
// implement the zapcore.WriteSyncer interface; if so it'll be used.
// As soon as a root span ends, its list item of YAML will be output to w, as:
//
//	# Trace1
//	- {Trace1 data}
//
//	# Trace2
//	- {Trace2 data}
//
// A span is a child of the span it was started from if that span was started
// by the same kind of TracerProvider, and trace.WithNewRoot() wasn't given.
func New(tp trace.TracerProvider, w io.Writer) trace.TracerProvider {
	return &testTracerProvider{tp, zapcore.Lock(zapcore.AddSync(w))}
}

type testTracerProvider struct {
	// embedding is important; this automatically exposes all inherited functionality from the
	// underlying resource.
	trace.TracerProvider
	// ws is a race-free writer
	ws zapcore.WriteSyncer
}

func (tp *testTracerProvider) Tracer(instrumentationName string, opts ...trace.TracerOption) trace.Tracer {
	tracer := tp.TracerProvider.Tracer(instrumentationName, opts...)
	return &testTracer{tracer, tp}
}

type testTracer struct {
	trace.Tracer

	provider *testTracerProvider
}

func (t *testTracer) Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	parent := parentSpan(trace.SpanFromContext(ctx))

	ctx, span := t.Tracer.Start(ctx, spanName, opts...)
	newSpan := &testSpan{span, t.provider, nil}

	if parent != nil && !cfg.NewRoot() {
		newSpan.data = parent.data.newChild(spanName)
	} else {
		newSpan.data = newSpanInfo(spanName, &sync.Mutex{})
	}
	newSpan.data.start = cfg.Timestamp()
	newSpan.SetAttributes(cfg.Attributes()...)

	return trace.ContextWithSpan(ctx, newSpan), newSpan
}

type testSpan struct {
	trace.Span

	provider *testTracerProvider
	data     *SpanInfo
}

func (s *testSpan) End(options ...trace.SpanEndOption) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	endCfg := trace.NewSpanEndConfig(options...)
	if end := endCfg.Timestamp(); !s.data.start.IsZero() && !end.IsZero() {
		s.data.Duration = end.Sub(s.data.start).String()
	}

	if !s.data.isChild {
		listItem := []*SpanInfo{s.data}
		// Deliberately use yaml.v2 here as it marshals lists on the same
		// indentation level as the list key.
		out, err := yaml.Marshal(listItem)
		if err == nil {
			header := fmt.Sprintf("# %s", s.data.Name)
			out = bytes.Join([][]byte{[]byte(header), out, nil}, []byte{'\n'})
			err = multierr.Combine(err, writeNoLength(s.provider.ws, out))
		}
		if err != nil {
			s.Span.RecordError(err)
		}
	}

	s.Span.End(options...)
}

func writeNoLength(w io.Writer, p []byte) error {
	_, err := w.Write(p)
	return err
}

func (s *testSpan) AddEvent(name string, options ...trace.EventOption) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	s.data.Events = append(s.data.Events, name)
	s.Span.AddEvent(name, options...)
}

func (s *testSpan) RecordError(err error, options ...trace.EventOption) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	s.data.Errors = append(s.data.Errors, fmt.Sprintf("%v", err))
	s.Span.RecordError(err, options...)
}

func (s *testSpan) SetStatus(code codes.Code, description string) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	s.data.Status = code.String()
	// Set description only if codes.Error
	if code == codes.Error && description != "" {
		s.data.Status += ": " + description
	}
	s.Span.SetStatus(code, description)
}

func (s *testSpan) SetName(name string) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	s.data.Name = name
	s.Span.SetName(name)
}

func (s *testSpan) SetAttributes(kv ...attribute.KeyValue) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	for _, attr := range kv {
		s.data.Attributes[string(attr.Key)] = attr.Value.AsInterface()
	}
	s.Span.SetAttributes(kv...)
}

func (s *testSpan) TracerProvider() trace.TracerProvider { return s.provider }

// parentSpan finds the *testSpan behind span, unwrapping composite spans
// implementing Unwrap() trace.Span.
func parentSpan(span trace.Span) *testSpan {
	for span != nil {
		switch s := span.(type) {
		case *testSpan:
			return s
		case interface{ Unwrap() trace.Span }:
			span = s.Unwrap()
		default:
			return nil
		}
	}
	return nil
}

func newSpanInfo(spanName string, mu *sync.Mutex) *SpanInfo {
	return &SpanInfo{
		Name:       spanName,
		Attributes: make(map[string]interface{}),
		mu:         mu,
	}
}

func (td *SpanInfo) newChild(spanName string) *SpanInfo {
	td.mu.Lock()
	defer td.mu.Unlock()

	child := newSpanInfo(spanName, td.mu)
	child.isChild = true
	td.Children = append(td.Children, child)
	return child
}
