// Package logcall logs the boundaries of instrumented calls.
//
// The instrument wraps an async.Computation. On the first Advance it emits an
// entry Record, and when the computation completes it emits exactly one exit
// or error Record. Suspensions in between are not logged: logging marks where
// a call starts and ends, measuring the time in between is left to tracing.
package logcall

import (
	"context"

	"github.com/zoobzio/clockz"

	"github.com/luxas/deklarative/instrument/async"
)

// Call returns a new *Builder for logging calls to the function fnName.
func Call(fnName string) *Builder {
	return &Builder{name: fnName, clock: clockz.RealClock}
}

// Builder configures the Call instrument.
type Builder struct {
	name      string
	callID    string
	args      []interface{}
	sink      Sink
	clock     clockz.Clock
	panicHook func(rec Record, r interface{})
}

// WithSink sets the Sink records are emitted to. By default, a LogrSink
// acquiring the Logger from the context is used.
//
// A call to this function overwrites any previous value.
func (b *Builder) WithSink(sink Sink) *Builder {
	b.sink = sink
	return b
}

// WithCallID sets the identifier shared by all records of the call.
//
// A call to this function overwrites any previous value.
func (b *Builder) WithCallID(id string) *Builder {
	b.callID = id
	return b
}

// WithArgs registers key-value pairs describing the call's inputs; they are
// attached to the entry record.
//
// A call to this function appends to the list of previous values.
func (b *Builder) WithArgs(keysAndValues ...interface{}) *Builder {
	b.args = append(b.args, keysAndValues...)
	return b
}

// WithClock sets the clock records are timestamped with.
//
// A call to this function overwrites any previous value.
func (b *Builder) WithClock(clock clockz.Clock) *Builder {
	b.clock = clock
	return b
}

// OnSinkPanic registers a function called with the record and the recovered
// value if the Sink panics while emitting. Panics of the Sink never reach
// the instrumented call.
//
// A call to this function overwrites any previous value.
func (b *Builder) OnSinkPanic(hook func(rec Record, r interface{})) *Builder {
	b.panicHook = hook
	return b
}

// Name returns the function identifier records are emitted for.
func (b *Builder) Name() string { return b.name }

// Wrap returns a Computation logging the call boundaries of c.
//
// The returned Computation fails with async.ErrInvalidState when advanced
// after it completed. Failures of c are logged and passed on unchanged.
//
// The configuration of b is copied; changing b afterwards doesn't affect the
// returned Computation.
func Wrap[T any](b *Builder, c async.Computation[T]) async.Computation[T] {
	cfg := *b
	sink := cfg.sink
	if sink == nil {
		sink = LogrSink{}
	}
	clock := cfg.clock
	if clock == nil {
		clock = clockz.RealClock
	}
	return &callComputation[T]{inner: c, b: &cfg, sink: sink, clock: clock}
}

type callComputation[T any] struct {
	inner async.Computation[T]
	b     *Builder
	sink  Sink
	clock clockz.Clock

	started bool
	done    bool
}

func (c *callComputation[T]) Advance(ctx context.Context) (async.Poll[T], error) {
	if c.done {
		return async.Poll[T]{}, async.ErrInvalidState
	}
	if !c.started {
		c.started = true
		c.emit(ctx, Record{Phase: PhaseEntry, Args: c.b.args})
	}

	p, err := c.inner.Advance(ctx)
	switch {
	case err != nil:
		c.done = true
		c.emit(ctx, Record{Phase: PhaseError, Err: err})
	case p.Complete():
		c.done = true
		if p.Err() != nil {
			c.emit(ctx, Record{Phase: PhaseError, Err: p.Err()})
		} else {
			c.emit(ctx, Record{Phase: PhaseExit, Value: p.Value()})
		}
	}
	return p, err
}

func (c *callComputation[T]) emit(ctx context.Context, rec Record) {
	rec.Function = c.b.name
	rec.CallID = c.b.callID
	rec.Time = c.clock.Now()

	defer func() {
		if r := recover(); r != nil && c.b.panicHook != nil {
			c.b.panicHook(rec, r)
		}
	}()
	c.sink.Emit(ctx, rec)
}
