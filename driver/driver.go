// Package driver runs a single async.Computation to completion from code that
// cannot suspend itself, for example a program's main function.
//
// A Driver is not a scheduler. It advances exactly one computation at a
// time, and blocks the calling goroutine only between advances, while the
// computation is suspended on its readiness channel.
package driver

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/go-logr/logr"

	"github.com/luxas/deklarative/instrument/async"
)

// ErrReentrantDrive is returned when a Driver is asked to drive a computation
// while it is already driving another one.
var ErrReentrantDrive = errors.New("driver: already driving a computation")

// Option configures a Driver.
type Option func(*Driver)

// WithLogger makes the Driver log suspensions and completion at V(1).
func WithLogger(log logr.Logger) Option {
	return func(d *Driver) { d.log = log }
}

// Driver advances one computation at a time. The zero value is ready to use.
type Driver struct {
	busy atomic.Bool
	log  logr.Logger
}

// New returns a new *Driver.
func New(opts ...Option) *Driver {
	d := &Driver{log: logr.Discard()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// BlockOn advances c with ctx until it completes, and returns its value and
// failure unchanged. While c is suspended, the calling goroutine blocks until
// the readiness channel is closed or ctx is done. When ctx is done, c is
// dropped before completion and ctx.Err() is returned.
//
// Internal faults reported by c, like async.ErrInvalidState, stop the drive
// and are returned as-is; nothing is retried.
//
// If d is already driving a computation, BlockOn returns ErrReentrantDrive
// without advancing c.
func BlockOn[T any](ctx context.Context, d *Driver, c async.Computation[T]) (T, error) {
	var zero T
	if !d.busy.CompareAndSwap(false, true) {
		return zero, ErrReentrantDrive
	}
	defer d.busy.Store(false)

	log := d.log
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	for suspensions := 0; ; suspensions++ {
		p, err := c.Advance(ctx)
		if err != nil {
			log.Error(err, "computation fault", "suspensions", suspensions)
			return zero, err
		}
		if p.Complete() {
			log.V(1).Info("computation complete", "suspensions", suspensions, "failed", p.Err() != nil)
			return p.Result()
		}

		log.V(1).Info("computation suspended", "suspensions", suspensions+1)
		wait := p.Wait()
		if wait == nil {
			continue
		}
		select {
		case <-wait:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// Run drives c to completion with a new Driver.
func Run[T any](ctx context.Context, c async.Computation[T]) (T, error) {
	return BlockOn(ctx, New(), c)
}
