/*
Package tracing traces instrumented calls with exactly one OpenTelemetry span
per call, uniformly for calls that complete right away and calls that suspend
one or more times before completing.

A span is started using a *TracerBuilder, which wraps an async.Computation:

	c := tracing.Wrap(tracing.Tracer("fetch"), fetchComputation)

The span starts when c is advanced for the first time, and ends when c
completes. Suspensions in between don't end the span, hence the span's
duration covers all the time the call was in progress, including the time it
spent waiting. When c completes with a failure, the error is recorded, the
status set to codes.Error and the OutcomeKey attribute set to OutcomeFailure;
otherwise the status is codes.Ok and the outcome OutcomeSuccess.

The parent of the span is the span in the context given to Advance. While the
wrapped computation is advanced, the new span is the current span of the
context it sees, so spans of calls made from within it become its children.
The context of the caller is never modified, so once Advance returns, also
when suspending, the current span of the caller is the same as before. This
makes sibling calls get the same parent, and two call trees advanced in an
interleaved manner never mix up their parents.

Consider this example tree of spans, where B suspends while C is in progress:

	|A                                      |
	 -----> |B                | |D        |
	         ----> |C       |

B and D are both children of A, although B was suspended and resumed in
between. C is a child of B only.

The TracerProvider used is, in order of preference, the one given to
TracerBuilder.WithTracerProvider, the one of the span in the context (which is
how chaining of spans work), or the global one (SetGlobalTracerProvider). A
TracerProvider can be attached to a context without starting a span, using
ContextWithTracerProvider.

The TracerProviderBuilder, returned from Provider(), is a builder-pattern
constructor for an OpenTelemetry SDK TracerProvider exporting spans to
stdout, or to an OpenTelemetry Collector using OTLP over gRPC or HTTP. It can
also compose providers on top of the SDK one, for example one logging the
span lifecycle (LogSpans), or one writing semi-human-readable YAML for each
trace (TestYAML and TestYAMLTo, see package traceyaml), which is useful when
you want to unit-test a function based on its output trace data using a
"golden file" in a testdata/ directory.
*/
package tracing
