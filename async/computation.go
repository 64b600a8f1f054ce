// Package async models a unit of work that may pause and later resume.
//
// A Computation is advanced by calling Advance repeatedly. Each call either
// reports that the computation is suspended, waiting for a readiness channel
// to be closed, or that it is complete with exactly one of a value or a
// failure. A computation that never suspends completes on its first Advance,
// which is how ordinary synchronous functions are modeled next to
// asynchronous ones.
//
// The context.Context given to Advance is the ambient context of the call,
// for example carrying the current trace span. Wrappers pass a derived
// context to their inner computation and never mutate the one they got, so
// the ambient value seen by the caller is restored every time Advance
// returns, also when the computation suspends.
package async

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidState is returned when Advance is called on a Computation that
// already completed.
var ErrInvalidState = errors.New("async: advance called on a completed computation")

// Computation is a unit of work that can be advanced until it completes.
//
// The error return value of Advance is reserved for internal faults, like
// ErrInvalidState. Failures reported by the computation's own body are
// carried by the returned Poll.
type Computation[T any] interface {
	Advance(ctx context.Context) (Poll[T], error)
}

// Poll is the result of one Advance call.
type Poll[T any] struct {
	wait     <-chan struct{}
	value    T
	err      error
	complete bool
}

// Suspended returns a Poll saying that the computation is waiting for wait to
// be closed before it should be advanced again. A nil wait channel means the
// computation can be advanced again right away.
func Suspended[T any](wait <-chan struct{}) Poll[T] { return Poll[T]{wait: wait} }

// Succeeded returns a complete Poll holding the value v.
func Succeeded[T any](v T) Poll[T] { return Poll[T]{value: v, complete: true} }

// Failed returns a complete Poll holding the failure err.
func Failed[T any](err error) Poll[T] { return Poll[T]{err: err, complete: true} }

// Complete reports whether the computation has finished.
func (p Poll[T]) Complete() bool { return p.complete }

// Wait returns the readiness channel of a suspended Poll.
func (p Poll[T]) Wait() <-chan struct{} { return p.wait }

// Value returns the success value of a complete Poll.
func (p Poll[T]) Value() T { return p.value }

// Err returns the failure of a complete Poll, if any.
func (p Poll[T]) Err() error { return p.err }

// Result returns both the value and the failure of a complete Poll.
func (p Poll[T]) Result() (T, error) { return p.value, p.err }

// Guard makes c fail with ErrInvalidState when advanced after it completed,
// or after it reported an internal fault. All constructors in this package
// return guarded computations already; Guard is meant for hand-written
// implementations of Computation.
func Guard[T any](c Computation[T]) Computation[T] {
	if g, ok := c.(*guarded[T]); ok {
		return g
	}
	return &guarded[T]{inner: c}
}

type guarded[T any] struct {
	inner Computation[T]
	done  bool
}

func (g *guarded[T]) Advance(ctx context.Context) (Poll[T], error) {
	if g.done {
		return Poll[T]{}, ErrInvalidState
	}
	p, err := g.inner.Advance(ctx)
	if err != nil || p.Complete() {
		g.done = true
	}
	return p, err
}

// PollFunc adapts fn to a guarded Computation. fn is a hand-written state
// machine; it is called once per Advance until it reports completion.
func PollFunc[T any](fn func(ctx context.Context) (Poll[T], error)) Computation[T] {
	return Guard[T](pollFunc[T](fn))
}

type pollFunc[T any] func(ctx context.Context) (Poll[T], error)

func (f pollFunc[T]) Advance(ctx context.Context) (Poll[T], error) { return f(ctx) }

// Func returns a Computation that runs fn on its first Advance and completes
// with its result. It never suspends.
func Func[T any](fn func(ctx context.Context) (T, error)) Computation[T] {
	return PollFunc(func(ctx context.Context) (Poll[T], error) {
		return complete(fn(ctx)), nil
	})
}

// Value returns a Computation completing with v on its first Advance.
func Value[T any](v T) Computation[T] {
	return PollFunc(func(context.Context) (Poll[T], error) {
		return Succeeded(v), nil
	})
}

// Fail returns a Computation completing with the failure err on its first
// Advance.
func Fail[T any](err error) Computation[T] {
	return PollFunc(func(context.Context) (Poll[T], error) {
		return Failed[T](err), nil
	})
}

// Await returns a Computation that suspends on wait when first advanced, and
// runs fn on the next Advance. It suspends exactly once, even if wait is
// already closed.
func Await[T any](wait <-chan struct{}, fn func(ctx context.Context) (T, error)) Computation[T] {
	suspended := false
	return PollFunc(func(ctx context.Context) (Poll[T], error) {
		if !suspended {
			suspended = true
			return Suspended[T](wait), nil
		}
		return complete(fn(ctx)), nil
	})
}

// Then returns a Computation that advances c to completion, and then
// continues with the Computation fn returns for c's value. A failure of c
// completes the returned Computation with the same failure, without calling
// fn. A nil Computation returned by fn is an internal fault wrapping
// ErrInvalidState.
//
// Both c and the continuation are advanced with the context given to the
// returned Computation's Advance.
func Then[A, B any](c Computation[A], fn func(ctx context.Context, v A) Computation[B]) Computation[B] {
	var next Computation[B]
	return PollFunc(func(ctx context.Context) (Poll[B], error) {
		if next == nil {
			p, err := c.Advance(ctx)
			if err != nil {
				return Poll[B]{}, err
			}
			if !p.Complete() {
				return Suspended[B](p.Wait()), nil
			}
			if p.Err() != nil {
				return Failed[B](p.Err()), nil
			}
			if next = fn(ctx, p.Value()); next == nil {
				return Poll[B]{}, fmt.Errorf("%w: continuation returned a nil Computation", ErrInvalidState)
			}
		}
		return next.Advance(ctx)
	})
}

func complete[T any](v T, err error) Poll[T] {
	if err != nil {
		return Failed[T](err)
	}
	return Succeeded(v)
}
