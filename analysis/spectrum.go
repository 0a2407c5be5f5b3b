// Package analysis turns captured engine sound into numbers the control panel can draw.
package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/faiface/enginesound"
)

// MinFrequency is the lower edge of the lowest Spectrum band.
const MinFrequency = 20.0

// magnitudes returns the magnitude of every FFT bin up to the Nyquist frequency of the
// Hann-windowed samples.
func magnitudes(samples []float64) []float64 {
	x := append([]float64(nil), samples...)
	window.Apply(x, window.Hann)
	bins := fft.FFTReal(x)
	mags := make([]float64, len(bins)/2+1)
	for i := range mags {
		mags[i] = cmplx.Abs(bins[i])
	}
	return mags
}

// Spectrum folds the spectrum of samples into bands logarithmically spaced from MinFrequency to
// the Nyquist frequency. Each band holds the strongest bin within it, normalized so that the
// strongest band is 1. Silence, or fewer than two samples, gives all zeros.
func Spectrum(samples []float64, sr enginesound.SampleRate, bands int) []float64 {
	if bands <= 0 {
		return nil
	}
	out := make([]float64, bands)
	if len(samples) < 2 || sr <= 0 {
		return out
	}

	mags := magnitudes(samples)
	binWidth := float64(sr) / float64(len(samples))
	lo, hi := math.Log(MinFrequency), math.Log(sr.Nyquist())
	for i, m := range mags[1:] {
		f := float64(i+1) * binWidth
		if f < MinFrequency {
			continue
		}
		b := int((math.Log(f) - lo) / (hi - lo) * float64(bands))
		if b >= bands {
			b = bands - 1
		}
		out[b] = math.Max(out[b], m)
	}

	var peak float64
	for _, m := range out {
		peak = math.Max(peak, m)
	}
	if peak == 0 {
		return out
	}
	for i := range out {
		out[i] /= peak
	}
	return out
}

// Peak returns the frequency of the strongest component of samples, ignoring DC. The resolution
// is sr/len(samples).
func Peak(samples []float64, sr enginesound.SampleRate) float64 {
	if len(samples) < 2 || sr <= 0 {
		return 0
	}
	mags := magnitudes(samples)
	best := 0
	for i := 1; i < len(mags); i++ {
		if mags[i] > mags[best] || best == 0 {
			best = i
		}
	}
	if mags[best] == 0 {
		return 0
	}
	return float64(best) * float64(sr) / float64(len(samples))
}

// Bars renders a spectrum as a line of block characters, one per band.
func Bars(spectrum []float64) string {
	const levels = " ▁▂▃▄▅▆▇█"
	blocks := []rune(levels)
	line := make([]rune, len(spectrum))
	for i, v := range spectrum {
		k := int(math.Round(math.Max(0, math.Min(1, v)) * float64(len(blocks)-1)))
		line[i] = blocks[k]
	}
	return string(line)
}
