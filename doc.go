/*
Package instrument instruments function calls with structured logs and
OpenTelemetry spans, the same way for functions that return right away and
for functions whose body suspends one or more times before returning.

Every call to an instrumented function yields:

	one entry record            (logged on the first Advance)
	exactly one span            (started after the entry record, ended on completion)
	one exit or error record    (logged after the span has ended)

A call is modeled by an async.Computation, which is advanced until it
completes. An ordinary synchronous function is a computation completing on its
first Advance (async.Func). An asynchronous body suspends by returning a
readiness channel, and is advanced again once the channel is closed; the
driver package does that for a computation started from synchronous code.

Instrumentation layers are Instruments, wrapping a computation into a new
one. Compose stacks them, the first being the outermost:

	c := instrument.Compose(base, instrument.Log[int](call), instrument.Trace[int](span))

The FuncBuilder composes the logging (package logcall) and the tracing
(package tracing) layers in that fixed order, and ties them together with a
call identifier shared by the records and the span:

	func fetch(ctx context.Context, id int) (string, error) {
		return instrument.Func[string]("fetch").WithArgs("id", id).
			Call(ctx, func(ctx context.Context) (string, error) {
				// ctx carries the span of this call, so instrumented
				// calls made from here get it as their parent.
				return lookup(ctx, id)
			})
	}

	// An asynchronous call, driven to completion by the driver.
	v, err := driver.Run(ctx, instrument.Func[int]("g").Wrap(
		async.Await(ready, func(ctx context.Context) (int, error) { return 1, nil }),
	))

The Logger used is the one given to FuncBuilder.WithLogger, or otherwise the
one in the context (logr.FromContext), falling back to the global one of the
logcall package. The TracerProvider is the one given to
FuncBuilder.WithTracerProvider, or the one of the current span in the context,
falling back to the global one of the tracing package. Context() builds a
context carrying a Logger and TracerProvider:

	ctx := instrument.Context().
		WithLogger(zaplog.NewZap().Build()).
		WithTracerProvider(tp).
		Build()

A computation dropped before it completes never logs its exit record, and its
span is never ended. Cancellation is not modeled.
*/
package instrument
