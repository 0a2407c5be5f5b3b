// Package stream serves the output of a Generator to consumers that ask for buffers of whatever
// size suits them.
//
// Every consumer gets its own Exact streamer. An Exact streamer never skips or repeats a sample of
// its source: the concatenation of everything it returned equals one request for the summed
// length. Two kinds of sources are provided: a Generator used directly (each request takes the
// Generator's lock for the duration of its fill, consumers sharing one Generator split its
// signal between them), and a Fanout subscription (every subscriber receives the same signal,
// sample for sample, produced once in fixed-size chunks).
package stream

import (
	"sync/atomic"
	"time"

	"github.com/faiface/enginesound"
)

// Source produces consecutive samples. *generators.Generator is a Source.
type Source interface {
	Fill(samples []float64)
}

// Exact serves arbitrarily sized requests from a Source and keeps track of how many samples it
// has delivered. An Exact streamer must not be used by more than one goroutine at a time;
// create one per consumer instead.
type Exact struct {
	fill      func(samples []float64) int
	err       func() error
	sr        enginesound.SampleRate
	buf       []float64
	delivered atomic.Int64
}

// New creates an Exact streamer over src. The sample rate is only used to convert the delivered
// position to a duration.
func New(src Source, sr enginesound.SampleRate) *Exact {
	return &Exact{
		fill: func(samples []float64) int {
			src.Fill(samples)
			return len(samples)
		},
		sr: sr,
	}
}

// Request returns the next n samples. Fewer are returned only if the source is closed.
func (e *Exact) Request(n int) []float64 {
	samples := make([]float64, n)
	return samples[:e.Read(samples)]
}

// Read fills samples with the next len(samples) samples and returns how many were delivered. That
// is always len(samples), unless the source is closed (see Err).
func (e *Exact) Read(samples []float64) int {
	if e.Err() != nil {
		return 0
	}
	n := e.fill(samples)
	e.delivered.Add(int64(n))
	return n
}

// Stream implements enginesound.Streamer, writing each mono sample to both channels. The stream
// only ends when the source is closed.
func (e *Exact) Stream(samples [][2]float64) (n int, ok bool) {
	if cap(e.buf) < len(samples) {
		e.buf = make([]float64, len(samples))
	}
	buf := e.buf[:len(samples)]
	n = e.Read(buf)
	for i, x := range buf[:n] {
		samples[i] = [2]float64{x, x}
	}
	if n == 0 && len(samples) > 0 {
		return 0, false
	}
	return n, true
}

// Err returns ErrClosed once a Fanout subscription has ended and its last chunk was consumed.
func (e *Exact) Err() error {
	if e.err == nil {
		return nil
	}
	return e.err()
}

// Delivered returns the number of samples handed to the consumer so far. It is safe to call from
// any goroutine.
func (e *Exact) Delivered() int64 {
	return e.delivered.Load()
}

// Position returns the duration of the samples delivered so far.
func (e *Exact) Position() time.Duration {
	if e.sr <= 0 {
		return 0
	}
	return time.Duration(e.Delivered()) * time.Second / time.Duration(e.sr)
}
