package logcall

import (
	"context"
	"sync"
)

// Recorder is a Sink keeping all Records in memory, in the order they were
// emitted. It is safe for concurrent use, and meant for tests.
type Recorder struct {
	mu      sync.Mutex
	records []Record
}

var _ Sink = &Recorder{}

// NewRecorder returns a new, empty *Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// Emit implements Sink.
func (r *Recorder) Emit(_ context.Context, rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, rec)
}

// Records returns a copy of the recorded Records.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Record(nil), r.records...)
}

// Phases returns the phases of the recorded Records.
func (r *Recorder) Phases() []Phase {
	r.mu.Lock()
	defer r.mu.Unlock()

	phases := make([]Phase, 0, len(r.records))
	for _, rec := range r.records {
		phases = append(phases, rec.Phase)
	}
	return phases
}

// Reset removes all recorded Records.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = nil
}
