package logcall

import (
	"context"

	"github.com/go-logr/logr"
)

const (
	// PhaseKey is the log key the phase of a Record is logged with.
	PhaseKey = "phase"
	// CallIDKey is the log key the call ID of a Record is logged with.
	CallIDKey = "call-id"
	// ReturnKey is the log key the return value of a call is logged with.
	ReturnKey = "return"
)

// LogrSink is a Sink writing Records to a logr.Logger. The Logger is named
// after the instrumented function.
//
// The zero value acquires the Logger using LoggerFromContext for every
// Record, and logs at verbosity 0.
type LogrSink struct {
	log   logr.Logger
	fixed bool
	level int
}

var _ Sink = LogrSink{}

// NewLogrSink returns a LogrSink always writing to log.
func NewLogrSink(log logr.Logger) LogrSink {
	return LogrSink{log: log, fixed: true}
}

// AtLevel returns a copy of s logging entry and exit records at verbosity
// level. Error records are always logged, as per how logr works.
func (s LogrSink) AtLevel(level int) LogrSink {
	s.level = level
	return s
}

// Emit implements Sink.
func (s LogrSink) Emit(ctx context.Context, rec Record) {
	log := s.log
	if !s.fixed {
		log = LoggerFromContext(ctx)
	}
	log = log.WithName(rec.Function).V(s.level)

	kv := []interface{}{PhaseKey, string(rec.Phase)}
	if rec.CallID != "" {
		kv = append(kv, CallIDKey, rec.CallID)
	}

	switch rec.Phase {
	case PhaseEntry:
		log.Info("entering call", append(kv, rec.Args...)...)
	case PhaseExit:
		log.Info("call returned", append(kv, ReturnKey, rec.Value)...)
	case PhaseError:
		log.Error(rec.Err, "call failed", kv...)
	}
}
