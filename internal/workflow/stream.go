package workflow

import "context"

// Stream is the lazily produced event sequence of one Generate call. Events
// are delivered over an unbuffered channel, so the producer never runs ahead
// of the consumer. A Stream cannot be restarted.
type Stream struct {
	events <-chan Event
	cancel context.CancelFunc
	done   <-chan struct{}
}

// Events returns the channel the events arrive on. It is closed after the
// terminal event, or early if the stream is closed.
func (s *Stream) Events() <-chan Event { return s.events }

// Next blocks for the next event. ok is false once the stream is exhausted.
func (s *Stream) Next() (ev Event, ok bool) {
	ev, ok = <-s.events
	return ev, ok
}

// Collect drains the stream and returns every event in order.
func (s *Stream) Collect() []Event {
	var out []Event
	for ev := range s.events {
		out = append(out, ev)
	}
	return out
}

// Close abandons the stream. The producer stops at its next emission point;
// an executor call already in flight is left to return on its own. Close is
// safe to call more than once and after the stream is exhausted.
func (s *Stream) Close() { s.cancel() }

// Done is closed when the producer goroutine has exited.
func (s *Stream) Done() <-chan struct{} { return s.done }
