// Package stream delivers model text deltas to consumers without letting a
// slow consumer stall the producing request.
package stream

import (
	"io"
	"sync"
)

// Sink receives text deltas in emission order. Implementations must not
// block indefinitely; a sink that cannot keep up sheds data instead.
type Sink interface {
	Push(delta string)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(delta string)

func (f SinkFunc) Push(delta string) { f(delta) }

// WriterSink writes each delta to w as it arrives. Safe for use from a
// single producing request; writes are serialized.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterSink(w io.Writer) *WriterSink { return &WriterSink{w: w} }

func (s *WriterSink) Push(delta string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Best effort: a broken pipe should not take the request down with it.
	_, _ = io.WriteString(s.w, delta)
}

// ChannelSink buffers deltas in a bounded channel for a consuming
// goroutine. When the buffer is full the oldest delta is dropped to admit
// the new one, so the producer never waits on the consumer.
type ChannelSink struct {
	mu     sync.Mutex
	ch     chan string
	closed bool
}

// NewChannelSink allocates a sink holding up to size deltas; size <= 0 gets
// a small default.
func NewChannelSink(size int) *ChannelSink {
	if size <= 0 {
		size = 16
	}
	return &ChannelSink{ch: make(chan string, size)}
}

func (s *ChannelSink) Push(delta string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- delta:
			return
		default:
		}
		// Buffer full: drop the oldest entry and retry. Only producers hold
		// the lock, so the retry always lands.
		select {
		case <-s.ch:
		default:
		}
	}
}

// Deltas is the receive side; it is closed by Close.
func (s *ChannelSink) Deltas() <-chan string { return s.ch }

// Close marks the stream finished and releases range loops over Deltas.
func (s *ChannelSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
