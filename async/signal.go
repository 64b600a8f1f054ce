package async

import "sync"

//nolint:gochecknoglobals
var closedCh = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Ready returns a readiness channel that is already closed.
func Ready() <-chan struct{} { return closedCh }

// Signal is a one-shot readiness primitive. Its channel is closed the first
// time Fire is called; later calls do nothing.
//
// A Signal is safe for concurrent use, so the event source firing it may live
// on another goroutine than the one waiting for it.
type Signal struct {
	once sync.Once
	ch   chan struct{}
}

// NewSignal returns a new, unfired Signal.
func NewSignal() *Signal { return &Signal{ch: make(chan struct{})} }

// Fire closes the channel returned by Done.
func (s *Signal) Fire() { s.once.Do(func() { close(s.ch) }) }

// Done returns the channel closed by Fire.
func (s *Signal) Done() <-chan struct{} { return s.ch }
