package effects_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faiface/enginesound"
	"github.com/faiface/enginesound/effects"
)

func ramp(n int) []float64 {
	data := make([]float64, n)
	for i := range data {
		data[i] = float64(i) / float64(n)
	}
	return data
}

func TestTapIsTransparent(t *testing.T) {
	data := ramp(1000)
	tap := effects.NewTap(enginesound.Samples(data), 64)

	buf := make([][2]float64, 479)
	var got []float64
	for {
		n, ok := tap.Stream(buf)
		if !ok {
			break
		}
		for _, s := range buf[:n] {
			got = append(got, s[0])
		}
	}
	assert.Equal(t, data, got)
	assert.Equal(t, data[1000-64:], tap.Samples(64))
	assert.Equal(t, data[1000-10:], tap.Samples(10))
	assert.Len(t, tap.Samples(100), 64)
}

func TestTapBeforeFull(t *testing.T) {
	tap := effects.NewTap(enginesound.Samples(ramp(10)), 64)
	assert.Empty(t, tap.Samples(5))

	tap.Stream(make([][2]float64, 3))
	assert.Equal(t, ramp(10)[:3], tap.Samples(64))
	assert.Equal(t, ramp(10)[1:3], tap.Samples(2))
}

func TestTapMixesChannels(t *testing.T) {
	s := enginesound.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{1, 0}
		}
		return len(samples), true
	})
	tap := effects.NewTap(s, 8)
	tap.Stream(make([][2]float64, 4))
	assert.Equal(t, []float64{0.5, 0.5, 0.5, 0.5}, tap.Samples(4))
}

// Run with -race.
func TestTapConcurrentReader(t *testing.T) {
	tap := effects.NewTap(enginesound.Loop(-1, enginesound.Samples(ramp(100))), 256)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			tap.Samples(128)
		}
	}()
	buf := make([][2]float64, 64)
	for i := 0; i < 100; i++ {
		tap.Stream(buf)
	}
	wg.Wait()
	require.Len(t, tap.Samples(256), 256)
}

func TestGain(t *testing.T) {
	g := &effects.Gain{Streamer: enginesound.Samples([]float64{0.5, -0.5}), Gain: 0.5}
	buf := make([][2]float64, 2)
	n, ok := g.Stream(buf)
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	assert.Equal(t, [][2]float64{{0.25, 0.25}, {-0.25, -0.25}}, buf)

	g = &effects.Gain{Streamer: enginesound.Samples([]float64{0.5}), Gain: 1, Muted: true}
	g.Stream(buf)
	assert.Equal(t, [2]float64{0, 0}, buf[0])
}

func TestMono(t *testing.T) {
	s := enginesound.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{0.2, 0.6}
		}
		return len(samples), true
	})
	buf := make([][2]float64, 3)
	effects.Mono(s).Stream(buf)
	for _, f := range buf {
		assert.InDelta(t, 0.4, f[0], 1e-15)
		assert.Equal(t, f[0], f[1])
	}
}
