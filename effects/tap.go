package effects

import (
	"sync"

	"github.com/faiface/enginesound"
)

// Tap passes a Streamer through unchanged while copying a mono mix of everything it streams into
// a ring buffer. The visualizer reads the buffer from another goroutine; it never touches the
// source itself.
type Tap struct {
	s    enginesound.Streamer
	mu   sync.Mutex
	buf  []float64
	pos  int
	full bool
}

// NewTap wraps s with a ring buffer holding the last size samples.
func NewTap(s enginesound.Streamer, size int) *Tap {
	if size < 1 {
		size = 1
	}
	return &Tap{
		s:   s,
		buf: make([]float64, size),
	}
}

func (t *Tap) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = t.s.Stream(samples)
	t.mu.Lock()
	for _, sample := range samples[:n] {
		t.buf[t.pos] = (sample[0] + sample[1]) / 2
		t.pos++
		if t.pos == len(t.buf) {
			t.pos = 0
			t.full = true
		}
	}
	t.mu.Unlock()
	return n, ok
}

func (t *Tap) Err() error {
	return t.s.Err()
}

// Samples returns the last n streamed samples in chronological order. Fewer are returned if fewer
// were streamed or n exceeds the buffer size.
func (t *Tap) Samples(n int) []float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	avail := t.pos
	if t.full {
		avail = len(t.buf)
	}
	if n > avail {
		n = avail
	}
	if n < 0 {
		n = 0
	}
	out := make([]float64, n)
	start := t.pos - n
	if start < 0 {
		start += len(t.buf)
	}
	for i := range out {
		out[i] = t.buf[(start+i)%len(t.buf)]
	}
	return out
}
