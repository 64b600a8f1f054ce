package tracing

import (
	"errors"
	"time"

	"github.com/zoobzio/clockz"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrDoubleClose is returned when a span is closed a second time.
	ErrDoubleClose = errors.New("tracing: span closed twice")
	// ErrSpanOpen is returned when the duration of a span is read before it
	// was closed.
	ErrSpanOpen = errors.New("tracing: span is still open")
)

const (
	// OutcomeKey is the span attribute telling how the call ended.
	OutcomeKey = attribute.Key("outcome")
	// CallIDKey is the span attribute holding the call identifier shared with
	// the log records of the call.
	CallIDKey = attribute.Key("call.id")

	// OutcomeSuccess is the OutcomeKey value of calls that returned a value.
	OutcomeSuccess = "success"
	// OutcomeFailure is the OutcomeKey value of calls that failed.
	OutcomeFailure = "failure"
)

// spanState tracks the lifecycle of one started span. It is not safe for
// concurrent use; a computation is only advanced by one goroutine at a time.
type spanState struct {
	// span is nil if starting it panicked.
	span      trace.Span
	name      string
	clock     clockz.Clock
	panicHook func(spanName string, r interface{})

	start  time.Time
	end    time.Time
	closed bool
}

// close ends the span with the outcome given by failure. The span is
// delivered to its processors exactly once.
func (s *spanState) close(failure error) error {
	if s.closed {
		return ErrDoubleClose
	}
	s.closed = true
	s.end = s.clock.Now()
	if s.span == nil {
		return nil
	}

	s.guard(func() {
		if failure != nil {
			s.span.RecordError(failure, trace.WithTimestamp(s.end))
			s.span.SetStatus(codes.Error, failure.Error())
			s.span.SetAttributes(OutcomeKey.String(OutcomeFailure))
		} else {
			s.span.SetStatus(codes.Ok, "")
			s.span.SetAttributes(OutcomeKey.String(OutcomeSuccess))
		}
	})
	// End even if setting the outcome panicked, so the span is released.
	s.guard(func() { s.span.End(trace.WithTimestamp(s.end)) })
	return nil
}

// guard runs fn, which calls into the collector, and recovers any panic.
func (s *spanState) guard(fn func()) {
	defer func() {
		if r := recover(); r != nil && s.panicHook != nil {
			s.panicHook(s.name, r)
		}
	}()
	fn()
}

func (s *spanState) duration() (time.Duration, error) {
	if !s.closed {
		return 0, ErrSpanOpen
	}
	return s.end.Sub(s.start), nil
}
