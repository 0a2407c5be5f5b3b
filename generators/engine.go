package generators

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/faiface/enginesound"
	"github.com/faiface/enginesound/engine"
)

// Generator synthesizes the sound of one engine.
//
// RPM and volume are atomic cells: a control goroutine may change them at any time without ever
// waiting for sample production. The engine phase and the filter state are guarded by a mutex
// which NextSample, Fill and Stream hold for the duration of one call, so any number of
// consumers may pull samples concurrently, each call producing a contiguous run of the signal.
type Generator struct {
	sr   enginesound.SampleRate
	desc engine.Description
	bank *Bank

	rpm    atomicFloat64
	volume atomicFloat64

	mu      sync.Mutex
	phase   float64
	lowpass *LowPassFilter
	dc      *DCBlocker
}

// NewGenerator creates a Generator for d at sample rate sr with volume 1 and RPM d.RPM. A sample
// rate that is not positive or an invalid Description is rejected.
func NewGenerator(sr enginesound.SampleRate, d engine.Description) (*Generator, error) {
	if err := sr.Validate(); err != nil {
		return nil, errors.Wrap(err, "generator")
	}
	if err := d.Validate(); err != nil {
		return nil, errors.Wrap(err, "generator")
	}
	g := &Generator{
		sr:      sr,
		desc:    d,
		bank:    NewBank(d, sr),
		lowpass: NewLowPassFilter(d.LowPassCutoff, sr, 1),
	}
	if d.DCCutoff > 0 {
		g.dc = NewDCBlocker(d.DCCutoff, sr, 1)
	}
	g.SetRPM(d.RPM)
	g.SetVolume(1)
	return g, nil
}

// SampleRate returns the fixed sample rate of the Generator.
func (g *Generator) SampleRate() enginesound.SampleRate {
	return g.sr
}

// Description returns the Description the Generator was created with.
func (g *Generator) Description() engine.Description {
	return g.desc
}

// Cylinders returns the number of cylinders the Generator mixes.
func (g *Generator) Cylinders() int {
	return g.bank.Cylinders()
}

// MaxRPM is the highest engine speed a Generator accepts. Far below it every partial is above the
// Nyquist frequency of any practical sample rate anyway.
const MaxRPM = 1e6

// SetRPM sets the engine speed, clamped to [0, MaxRPM]. Negative values (and NaN) become 0,
// which is silence.
func (g *Generator) SetRPM(rpm float64) {
	switch {
	case !(rpm > 0):
		rpm = 0
	case rpm > MaxRPM:
		rpm = MaxRPM
	}
	g.rpm.Store(rpm)
}

// RPM returns the current engine speed.
func (g *Generator) RPM() float64 {
	return g.rpm.Load()
}

// SetVolume sets the output volume, clamped to [0, 1].
func (g *Generator) SetVolume(volume float64) {
	switch {
	case !(volume > 0):
		volume = 0
	case volume > 1:
		volume = 1
	}
	g.volume.Store(volume)
}

// Volume returns the current output volume.
func (g *Generator) Volume() float64 {
	return g.volume.Load()
}

// NextSample advances the engine by one sample and returns it.
func (g *Generator) NextSample() float64 {
	g.mu.Lock()
	x := g.next()
	g.mu.Unlock()
	return x
}

// Fill writes the next len(samples) samples to samples. The output is identical to that many
// successive NextSample calls, but the lock is only taken once.
func (g *Generator) Fill(samples []float64) {
	g.mu.Lock()
	for i := range samples {
		samples[i] = g.next()
	}
	g.mu.Unlock()
}

// Stream fills samples with the next len(samples) samples, the same value in both channels. A
// Generator never drains.
func (g *Generator) Stream(samples [][2]float64) (n int, ok bool) {
	g.mu.Lock()
	for i := range samples {
		x := g.next()
		samples[i] = [2]float64{x, x}
	}
	g.mu.Unlock()
	return len(samples), true
}

// Err always returns nil.
func (g *Generator) Err() error {
	return nil
}

// Reset rewinds the engine phase to 0 and clears the filter state, as if the Generator was just
// created. RPM and volume are kept.
func (g *Generator) Reset() {
	g.mu.Lock()
	g.phase = 0
	g.lowpass.Reset()
	if g.dc != nil {
		g.dc.Reset()
	}
	g.mu.Unlock()
}

// next must be called with g.mu held.
func (g *Generator) next() float64 {
	rpm := g.rpm.Load()
	_, g.phase = math.Modf(g.phase + g.desc.CycleFrequency(rpm)/float64(g.sr))
	x := g.bank.Value(g.phase, rpm)
	x = g.lowpass.Process(0, x)
	if g.dc != nil {
		x = g.dc.Process(0, x)
	}
	return x * g.volume.Load()
}

type atomicFloat64 struct {
	bits atomic.Uint64
}

func (f *atomicFloat64) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

func (f *atomicFloat64) Store(x float64) {
	f.bits.Store(math.Float64bits(x))
}
