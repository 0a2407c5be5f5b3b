package generators

import (
	"math"

	"github.com/faiface/enginesound"
	"github.com/faiface/enginesound/engine"
)

// Bank is the set of per-cylinder oscillators of an engine. It has no state besides the offsets
// and gains fixed at construction: Value is a pure function of the engine phase and RPM, so the
// same Bank can be shared freely.
type Bank struct {
	desc    engine.Description
	nyquist float64
	offsets []float64
	gains   []float64
	norm    float64
}

// NewBank builds the oscillators for the cylinders of d at sample rate sr. The Description must
// be valid.
func NewBank(d engine.Description, sr enginesound.SampleRate) *Bank {
	b := &Bank{
		desc:    d,
		nyquist: sr.Nyquist(),
		offsets: d.CylinderOffsets(),
		gains:   d.CylinderGains(),
	}
	for _, g := range b.gains {
		b.norm += g * (1 + d.Exhaust.Gain + d.Intake.Gain)
	}
	return b
}

// Cylinders returns the number of oscillators in the bank.
func (b *Bank) Cylinders() int {
	return len(b.offsets)
}

// Value returns the mixed output of all cylinders at the given engine phase (fraction of one
// engine cycle, in [0, 1)) and RPM. The result is in [-1, 1]. At zero RPM, or when not even the
// fundamental fits below the Nyquist frequency, the engine is silent.
func (b *Bank) Value(phase, rpm float64) float64 {
	if rpm <= 0 || b.norm == 0 {
		return 0
	}
	f := b.desc.CycleFrequency(rpm)
	harmonics := bandLimit(b.desc.Combustion.Harmonics, 1, f, b.nyquist)
	if harmonics < 1 {
		return 0
	}
	brightness := b.desc.Combustion.Brightness + b.desc.Combustion.BrightnessPerKRPM*rpm/1000
	rolloff := math.Exp(-1 / brightness)
	exhaust := 0
	if b.desc.Exhaust.Gain > 0 {
		exhaust = bandLimit(b.desc.Exhaust.Harmonics, 2, f, b.nyquist)
	}

	var sum float64
	for i, offset := range b.offsets {
		_, p := math.Modf(phase + offset)
		x := Pulse(p, harmonics, rolloff)
		if exhaust > 0 {
			x += b.desc.Exhaust.Gain * OddHarmonics(p, exhaust)
		}
		if b.desc.Intake.Gain > 0 {
			x += b.desc.Intake.Gain * b.intake(p)
		}
		sum += b.gains[i] * x
	}
	return sum / b.norm
}

// intake returns valve noise while the cylinder's intake is open and 0 otherwise.
func (b *Bank) intake(p float64) float64 {
	d := p - b.desc.Intake.Open
	if d < 0 {
		d++
	}
	if d >= b.desc.Intake.Width {
		return 0
	}
	return Noise(p)
}

// bandLimit returns how many of the first limit partials, spaced step harmonics apart starting at
// the fundamental f, lie below nyquist.
func bandLimit(limit, step int, f, nyquist float64) int {
	n := 0
	for k := 1; n < limit && float64(k)*f < nyquist; k += step {
		n++
	}
	return n
}
