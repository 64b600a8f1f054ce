package instrument_test

import (
	"context"
	"fmt"
	golog "log"

	"github.com/zoobzio/clockz"

	"github.com/luxas/deklarative/instrument"
	"github.com/luxas/deklarative/instrument/async"
	"github.com/luxas/deklarative/instrument/driver"
	"github.com/luxas/deklarative/instrument/filetest"
	"github.com/luxas/deklarative/instrument/logcall/zaplog"
	"github.com/luxas/deklarative/instrument/tracing"
)

func Example() {
	// Log JSON to os.Stdout, and write every finished trace as YAML to
	// os.Stdout as well.
	log := zaplog.NewZap().Example().Build()
	tp, err := tracing.Provider().Synchronous().TestYAMLTo(filetest.ExampleStdout).Build()
	if err != nil {
		golog.Fatal(err)
	}
	ctx := instrument.Context().WithLogger(log).WithTracerProvider(tp).Build()

	// Deterministic call IDs and timestamps, for the sake of the example.
	n := 0
	nextID := func() string {
		n++
		return fmt.Sprintf("call-%d", n)
	}
	clock := clockz.NewFakeClock()

	f := func(ctx context.Context, a int) (int, error) {
		return instrument.Func[int]("f").WithArgs("a", a).WithCallIDs(nextID).WithClock(clock).
			Call(ctx, func(context.Context) (int, error) {
				return a + 1, nil
			})
	}

	// f is called directly.
	v, err := f(ctx, 1)
	fmt.Println("f(1) =", v, err)

	// g suspends once, and calls f when resumed. It is driven to completion
	// by the driver.
	g := instrument.Func[int]("g").WithCallIDs(nextID).WithClock(clock).Wrap(
		async.Await(async.Ready(), func(ctx context.Context) (int, error) {
			return f(ctx, 0)
		}),
	)
	v, err = driver.Run(ctx, g)
	fmt.Println("g() =", v, err)

	if err := tp.Shutdown(ctx); err != nil {
		golog.Fatal(err)
	}

	// Output:
	// {"level":"info(v=0)","logger":"f","msg":"entering call","phase":"entry","call-id":"call-1","a":1}
	// # f
	// - name: f
	//   attributes:
	//     call.id: call-1
	//     outcome: success
	//   status: Ok
	//   duration: 0s
	//
	// {"level":"info(v=0)","logger":"f","msg":"call returned","phase":"exit","call-id":"call-1","return":2}
	// f(1) = 2 <nil>
	// {"level":"info(v=0)","logger":"g","msg":"entering call","phase":"entry","call-id":"call-2"}
	// {"level":"info(v=0)","logger":"f","msg":"entering call","phase":"entry","call-id":"call-3","a":0}
	// {"level":"info(v=0)","logger":"f","msg":"call returned","phase":"exit","call-id":"call-3","return":1}
	// # g
	// - name: g
	//   attributes:
	//     call.id: call-2
	//     outcome: success
	//   status: Ok
	//   duration: 0s
	//   children:
	//   - name: f
	//     attributes:
	//       call.id: call-3
	//       outcome: success
	//     status: Ok
	//     duration: 0s
	//
	// {"level":"info(v=0)","logger":"g","msg":"call returned","phase":"exit","call-id":"call-2","return":1}
	// g() = 1 <nil>
}

func ExampleContext() {
	tp, err := tracing.Provider().Synchronous().TestYAMLTo(filetest.ExampleStdout).Build()
	if err != nil {
		golog.Fatal(err)
	}
	ctx := instrument.Context().WithTracerProvider(tp).Build()

	_, err = instrument.Func[string]("Read").WithActor(&fooReader{}).WithCallIDs(func() string { return "1" }).
		WithClock(clockz.NewFakeClock()).
		Call(ctx, func(context.Context) (string, error) { return "", nil })
	if err != nil {
		golog.Fatal(err)
	}

	// Output:
	// # *instrument_test.fooReader.Read
	// - name: '*instrument_test.fooReader.Read'
	//   attributes:
	//     call.id: "1"
	//     outcome: success
	//   status: Ok
	//   duration: 0s
}
