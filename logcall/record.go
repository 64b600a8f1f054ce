package logcall

import (
	"context"
	"fmt"
	"time"
)

// Phase tells at which call boundary a Record was created.
type Phase string

const (
	// PhaseEntry is the phase of the Record emitted when a call starts.
	PhaseEntry Phase = "entry"
	// PhaseExit is the phase of the Record emitted when a call returns a value.
	PhaseExit Phase = "exit"
	// PhaseError is the phase of the Record emitted when a call fails.
	PhaseError Phase = "error"
)

// Record is one structured call event. It is created by the instrument, handed
// to a Sink and never modified afterwards.
type Record struct {
	// Function identifies the instrumented function.
	Function string
	// CallID identifies the call; it is shared by all records of one call,
	// and by the span of the call if the call is also traced.
	CallID string
	Phase  Phase
	Time   time.Time
	// Args are key-value pairs describing the call's inputs. Only set for
	// PhaseEntry.
	Args []interface{}
	// Value is the value the call returned. Only set for PhaseExit.
	Value interface{}
	// Err is the failure of the call. Only set for PhaseError.
	Err error
}

// String implements fmt.Stringer.
func (r Record) String() string {
	switch r.Phase {
	case PhaseExit:
		return fmt.Sprintf("%s() => %v", r.Function, r.Value)
	case PhaseError:
		return fmt.Sprintf("%s() => error: %v", r.Function, r.Err)
	default:
		return fmt.Sprintf("%s()", r.Function)
	}
}

// Sink receives Records. Emit must return promptly, and the Sink must be safe
// for concurrent use if instrumented calls run on several goroutines.
type Sink interface {
	Emit(ctx context.Context, rec Record)
}

// SinkFunc is a function implementing Sink.
type SinkFunc func(ctx context.Context, rec Record)

var _ Sink = SinkFunc(nil)

// Emit implements Sink.
func (f SinkFunc) Emit(ctx context.Context, rec Record) { f(ctx, rec) }
