package generators

import (
	"math"

	"github.com/faiface/enginesound"
)

// LowPassFilter is a one-pole recursive smoothing filter:
//
//	y[n] = y[n-1] + alpha * (x[n] - y[n-1])
//
// It keeps one previous output per channel. Samples of a channel must be fed strictly in
// temporal order; the state carries over between calls, so there is no discontinuity at buffer
// boundaries.
type LowPassFilter struct {
	alpha float64
	y     []float64
}

// NewLowPassFilter creates a filter for the given number of channels with the given cutoff
// frequency in Hertz. A cutoff of zero, or at or above the Nyquist frequency, makes the filter a
// pass-through.
func NewLowPassFilter(cutoff float64, sr enginesound.SampleRate, channels int) *LowPassFilter {
	alpha := 1.0
	if cutoff > 0 && cutoff < sr.Nyquist() {
		rc := 1 / (2 * math.Pi * cutoff)
		dt := 1 / float64(sr)
		alpha = dt / (rc + dt)
	}
	return &LowPassFilter{
		alpha: alpha,
		y:     make([]float64, channels),
	}
}

// Process filters one sample of channel c.
func (f *LowPassFilter) Process(c int, x float64) float64 {
	f.y[c] += f.alpha * (x - f.y[c])
	return f.y[c]
}

// Reset clears the state of every channel to zero.
func (f *LowPassFilter) Reset() {
	for c := range f.y {
		f.y[c] = 0
	}
}

// DCBlocker removes DC offset with a first-order high-pass:
//
//	y[n] = x[n] - x[n-1] + r * y[n-1]
type DCBlocker struct {
	r      float64
	x1, y1 []float64
}

// NewDCBlocker creates a DC blocker for the given number of channels. Cutoffs are typically
// around 5-20 Hz.
func NewDCBlocker(cutoff float64, sr enginesound.SampleRate, channels int) *DCBlocker {
	r := 1 - 2*math.Pi*cutoff/float64(sr)
	if r < 0.9 {
		r = 0.9
	}
	if r > 0.9999 {
		r = 0.9999
	}
	return &DCBlocker{
		r:  r,
		x1: make([]float64, channels),
		y1: make([]float64, channels),
	}
}

// Process filters one sample of channel c.
func (dc *DCBlocker) Process(c int, x float64) float64 {
	y := x - dc.x1[c] + dc.r*dc.y1[c]
	dc.x1[c] = x
	dc.y1[c] = y
	return y
}

// Reset clears the state of every channel to zero.
func (dc *DCBlocker) Reset() {
	for c := range dc.x1 {
		dc.x1[c] = 0
		dc.y1[c] = 0
	}
}
