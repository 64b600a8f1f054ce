package tracing_test

import (
	"context"
	"errors"
	"fmt"
	golog "log"
	"time"

	"github.com/go-logr/logr"
	"github.com/zoobzio/clockz"

	"github.com/luxas/deklarative/instrument/async"
	"github.com/luxas/deklarative/instrument/driver"
	"github.com/luxas/deklarative/instrument/filetest"
	"github.com/luxas/deklarative/instrument/logcall/zaplog"
	"github.com/luxas/deklarative/instrument/tracing"
)

func ExampleWrap() {
	// Make a TracerProvider writing YAML about the finished traces to
	// os.Stdout.
	tp, err := tracing.Provider().Synchronous().TestYAMLTo(filetest.ExampleStdout).Build()
	if err != nil {
		golog.Fatal(err)
	}
	clock := clockz.NewFakeClock()

	// g suspends once, one second passes, and then it calls h. h finds the
	// TracerProvider through the span of g in the context.
	body := async.Then(
		async.Await(async.Ready(), func(context.Context) (int, error) {
			clock.Advance(time.Second)
			return 1, nil
		}),
		func(_ context.Context, v int) async.Computation[int] {
			return tracing.Wrap(tracing.Tracer("h").WithClock(clock), async.Value(v+1))
		},
	)
	g := tracing.Wrap(tracing.Tracer("g").
		WithTracerProvider(tp).
		WithClock(clock).
		WithCallID("call-1"), body)

	v, err := driver.Run(context.Background(), g)
	fmt.Println("result:", v, err)

	if err := tp.Shutdown(context.Background()); err != nil {
		golog.Fatal(err)
	}

	// Output:
	// # g
	// - name: g
	//   attributes:
	//     call.id: call-1
	//     outcome: success
	//   status: Ok
	//   duration: 1s
	//   children:
	//   - name: h
	//     attributes:
	//       outcome: success
	//     status: Ok
	//     duration: 0s
	//
	// result: 2 <nil>
}

func ExampleTracerProviderBuilder_LogSpans() {
	log := zaplog.NewZap().Example().LogUpto(1).Build()
	ctx := logr.NewContext(context.Background(), log)

	tp, err := tracing.Provider().Synchronous().LogSpans(nil).Build()
	if err != nil {
		golog.Fatal(err)
	}

	f := tracing.Wrap(tracing.Tracer("f").
		WithTracerProvider(tp).
		WithCallID("call-1"), async.Fail[int](errors.New("boom")))

	_, err = driver.Run(ctx, f)
	fmt.Println("failure:", err)

	if err := tp.Shutdown(ctx); err != nil {
		golog.Fatal(err)
	}

	// Output:
	// {"level":"debug(v=1)","logger":"f","msg":"starting span","span-attr-call.id":"call-1"}
	// {"level":"debug(v=1)","logger":"f","msg":"span error","error":"boom"}
	// {"level":"debug(v=1)","logger":"f","msg":"span status change","span-status-code":"Error","span-status-description":"boom"}
	// {"level":"debug(v=1)","logger":"f","msg":"span attribute change","span-attr-outcome":"failure"}
	// {"level":"debug(v=1)","logger":"f","msg":"ending span"}
	// failure: boom
}
