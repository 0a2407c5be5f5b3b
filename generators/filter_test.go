package generators_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/faiface/enginesound/generators"
)

// stepAlpha returns the smoothing factor of a fresh filter: its first response to a unit step.
func stepAlpha(cutoff float64) float64 {
	return generators.NewLowPassFilter(cutoff, 48000, 1).Process(0, 1)
}

func TestLowPassFilterAlpha(t *testing.T) {
	rc := 1 / (2 * math.Pi * 1000)
	dt := 1.0 / 48000
	assert.InDelta(t, dt/(rc+dt), stepAlpha(1000), 1e-15)

	assert.Equal(t, 1.0, stepAlpha(0))
	assert.Equal(t, 1.0, stepAlpha(24000))
}

func TestLowPassFilterStep(t *testing.T) {
	f := generators.NewLowPassFilter(500, 44100, 1)
	a := generators.NewLowPassFilter(500, 44100, 1).Process(0, 1)
	y := 0.0
	for i := 0; i < 100; i++ {
		y += a * (1 - y)
		assert.InDelta(t, y, f.Process(0, 1), 1e-15)
	}
	for i := 0; i < 10000; i++ {
		y = f.Process(0, 1)
	}
	assert.InDelta(t, 1, y, 1e-9)

	f.Reset()
	assert.Equal(t, a, f.Process(0, 1))
}

func TestLowPassFilterChannelsAreIndependent(t *testing.T) {
	f := generators.NewLowPassFilter(500, 44100, 2)
	a := generators.NewLowPassFilter(500, 44100, 1).Process(0, 1)
	f.Process(0, 1)
	f.Process(0, 1)
	assert.Equal(t, a*0.5, f.Process(1, 0.5))
}

func TestPassThroughLowPass(t *testing.T) {
	f := generators.NewLowPassFilter(0, 44100, 1)
	for _, x := range []float64{0.3, -1, 0.75} {
		assert.Equal(t, x, f.Process(0, x))
	}
}

func TestDCBlockerRemovesOffset(t *testing.T) {
	dc := generators.NewDCBlocker(10, 44100, 1)
	var y float64
	for i := 0; i < 44100; i++ {
		y = dc.Process(0, 0.5+0.25*math.Sin(2*math.Pi*440*float64(i)/44100))
	}
	assert.InDelta(t, 0, y, 0.3)

	var mean float64
	for i := 0; i < 4410; i++ {
		mean += dc.Process(0, 0.5+0.25*math.Sin(2*math.Pi*440*float64(44100+i)/44100))
	}
	assert.InDelta(t, 0, mean/4410, 0.01)

	dc.Reset()
	assert.Equal(t, 0.5, dc.Process(0, 0.5))
}
