// Package engine describes the engines the generators package can synthesize.
//
// A Description is plain data: cylinder geometry, firing order and the timbre parameters of the
// parametric synthesizer. It is usually loaded from a YAML (or JSON) file with Load, validated
// with Validate and then handed to generators.NewGenerator.
package engine

import (
	"math"

	"github.com/pkg/errors"
)

var (
	// ErrNoCylinders indicates a Description with fewer than one cylinder.
	ErrNoCylinders = errors.New("engine: cylinder count must be at least 1")
	// ErrStrokes indicates an unsupported number of strokes per cycle.
	ErrStrokes = errors.New("engine: strokes must be 2 or 4")
	// ErrFiringOrder indicates a firing order that is not a permutation of the cylinders.
	ErrFiringOrder = errors.New("engine: firing order must list every cylinder exactly once")
	// ErrOffsets indicates per-cylinder offsets of the wrong length or outside [0, 1).
	ErrOffsets = errors.New("engine: offsets must have one value in [0, 1) per cylinder")
	// ErrGains indicates per-cylinder gains of the wrong length or with negative values.
	ErrGains = errors.New("engine: gains must have one non-negative value per cylinder")
	// ErrParameter indicates a timbre parameter outside its valid range.
	ErrParameter = errors.New("engine: parameter out of range")
)

// Combustion shapes the pulse each cylinder emits when it fires.
type Combustion struct {
	// Harmonics is the maximum number of harmonics of the engine cycle frequency summed into the
	// pulse. Fewer are used when higher ones would alias.
	Harmonics int `yaml:"harmonics" json:"harmonics"`

	// Brightness is the rolloff constant of the harmonic amplitudes at 0 RPM. Harmonic k has
	// amplitude exp(-(k-1)/brightness), so bigger values keep more high harmonics.
	Brightness float64 `yaml:"brightness" json:"brightness"`

	// BrightnessPerKRPM is added to Brightness for every 1000 RPM, so combustion events sound
	// sharper the faster the engine turns.
	BrightnessPerKRPM float64 `yaml:"brightness_per_krpm" json:"brightness_per_krpm"`
}

// Intake adds a burst of noise while a cylinder's intake valve is open.
type Intake struct {
	// Gain of the intake noise relative to the combustion pulse. Zero disables intake noise.
	Gain float64 `yaml:"gain" json:"gain"`

	// Open is the position within the cylinder's cycle at which the valve opens, in [0, 1).
	Open float64 `yaml:"open" json:"open"`

	// Width is the fraction of the cylinder's cycle for which the valve stays open, in [0, 1].
	Width float64 `yaml:"width" json:"width"`
}

// Exhaust adds the hollow, odd-harmonic tone of the exhaust pipe.
type Exhaust struct {
	// Gain of the exhaust tone relative to the combustion pulse. Zero disables it.
	Gain float64 `yaml:"gain" json:"gain"`

	// Harmonics is the number of odd harmonics summed into the exhaust tone.
	Harmonics int `yaml:"harmonics" json:"harmonics"`
}

// Description is the complete, static description of an engine. Only RPM changes during a
// synthesis session, and it does so through the generator, not through the Description.
type Description struct {
	// Name is informational.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Cylinders is the number of cylinders, at least 1.
	Cylinders int `yaml:"cylinders" json:"cylinders"`

	// Strokes is 4 for four-stroke engines (one cycle spans two crank revolutions) or 2 for
	// two-stroke engines. Zero means 4.
	Strokes int `yaml:"strokes,omitempty" json:"strokes,omitempty"`

	// FiringOrder lists 1-based cylinder numbers in the order they fire. The cylinders fire
	// evenly spaced through the engine cycle. Empty means 1, 2, ..., Cylinders.
	FiringOrder []int `yaml:"firing_order,omitempty" json:"firing_order,omitempty"`

	// Offsets, if set, overrides FiringOrder with an explicit phase offset per cylinder, as a
	// fraction of one engine cycle added to the engine phase. Uneven offsets give the lumpy
	// sound of e.g. a V-twin.
	Offsets []float64 `yaml:"offsets,omitempty" json:"offsets,omitempty"`

	// Gains, if set, holds the amplitude of each cylinder. Empty means 1 for every cylinder.
	Gains []float64 `yaml:"gains,omitempty" json:"gains,omitempty"`

	Combustion Combustion `yaml:"combustion" json:"combustion"`
	Intake     Intake     `yaml:"intake" json:"intake"`
	Exhaust    Exhaust    `yaml:"exhaust" json:"exhaust"`

	// RPM is the initial engine speed. Like every RPM the generator is given, negative values
	// are clamped to 0.
	RPM float64 `yaml:"rpm" json:"rpm"`

	// LowPassCutoff is the cutoff frequency of the output smoothing filter in Hertz. Zero or a
	// value at or above the Nyquist frequency disables smoothing.
	LowPassCutoff float64 `yaml:"lowpass_cutoff" json:"lowpass_cutoff"`

	// DCCutoff is the cutoff frequency of the DC blocking high-pass in Hertz. Zero disables it.
	DCCutoff float64 `yaml:"dc_cutoff,omitempty" json:"dc_cutoff,omitempty"`
}

// Validate checks every invariant of d and reports the first one violated.
func (d Description) Validate() error {
	if d.Cylinders < 1 {
		return errors.Wrapf(ErrNoCylinders, "got %d", d.Cylinders)
	}
	if d.Strokes != 0 && d.Strokes != 2 && d.Strokes != 4 {
		return errors.Wrapf(ErrStrokes, "got %d", d.Strokes)
	}
	if len(d.Offsets) > 0 {
		if len(d.Offsets) != d.Cylinders {
			return errors.Wrapf(ErrOffsets, "got %d offsets for %d cylinders", len(d.Offsets), d.Cylinders)
		}
		for i, o := range d.Offsets {
			if o < 0 || o >= 1 || math.IsNaN(o) {
				return errors.Wrapf(ErrOffsets, "cylinder %d has offset %v", i+1, o)
			}
		}
	} else if len(d.FiringOrder) > 0 {
		if err := checkFiringOrder(d.FiringOrder, d.Cylinders); err != nil {
			return err
		}
	}
	if len(d.Gains) > 0 {
		if len(d.Gains) != d.Cylinders {
			return errors.Wrapf(ErrGains, "got %d gains for %d cylinders", len(d.Gains), d.Cylinders)
		}
		for i, g := range d.Gains {
			if g < 0 || math.IsNaN(g) {
				return errors.Wrapf(ErrGains, "cylinder %d has gain %v", i+1, g)
			}
		}
	}
	for _, p := range []struct {
		name string
		x    float64
	}{
		{"combustion brightness", d.Combustion.Brightness},
		{"combustion brightness_per_krpm", d.Combustion.BrightnessPerKRPM},
		{"intake gain", d.Intake.Gain},
		{"intake open", d.Intake.Open},
		{"intake width", d.Intake.Width},
		{"exhaust gain", d.Exhaust.Gain},
		{"rpm", d.RPM},
		{"lowpass_cutoff", d.LowPassCutoff},
		{"dc_cutoff", d.DCCutoff},
	} {
		if math.IsNaN(p.x) || math.IsInf(p.x, 0) {
			return errors.Wrapf(ErrParameter, "%s is %v", p.name, p.x)
		}
	}
	switch {
	case d.Combustion.Harmonics < 1:
		return errors.Wrapf(ErrParameter, "combustion harmonics %d < 1", d.Combustion.Harmonics)
	case d.Combustion.Brightness <= 0:
		return errors.Wrapf(ErrParameter, "combustion brightness %v <= 0", d.Combustion.Brightness)
	case d.Combustion.BrightnessPerKRPM < 0:
		return errors.Wrapf(ErrParameter, "combustion brightness_per_krpm %v < 0", d.Combustion.BrightnessPerKRPM)
	case d.Intake.Gain < 0:
		return errors.Wrapf(ErrParameter, "intake gain %v < 0", d.Intake.Gain)
	case d.Intake.Open < 0 || d.Intake.Open >= 1:
		return errors.Wrapf(ErrParameter, "intake open %v outside [0, 1)", d.Intake.Open)
	case d.Intake.Width < 0 || d.Intake.Width > 1:
		return errors.Wrapf(ErrParameter, "intake width %v outside [0, 1]", d.Intake.Width)
	case d.Exhaust.Gain < 0:
		return errors.Wrapf(ErrParameter, "exhaust gain %v < 0", d.Exhaust.Gain)
	case d.Exhaust.Gain > 0 && d.Exhaust.Harmonics < 1:
		return errors.Wrapf(ErrParameter, "exhaust harmonics %d < 1", d.Exhaust.Harmonics)
	case d.LowPassCutoff < 0:
		return errors.Wrapf(ErrParameter, "lowpass_cutoff %v < 0", d.LowPassCutoff)
	case d.DCCutoff < 0:
		return errors.Wrapf(ErrParameter, "dc_cutoff %v < 0", d.DCCutoff)
	}
	return nil
}

func checkFiringOrder(order []int, cylinders int) error {
	if len(order) != cylinders {
		return errors.Wrapf(ErrFiringOrder, "got %d entries for %d cylinders", len(order), cylinders)
	}
	seen := make([]bool, cylinders)
	for _, c := range order {
		if c < 1 || c > cylinders {
			return errors.Wrapf(ErrFiringOrder, "cylinder %d does not exist", c)
		}
		if seen[c-1] {
			return errors.Wrapf(ErrFiringOrder, "cylinder %d fires twice", c)
		}
		seen[c-1] = true
	}
	return nil
}

// CycleRevolutions returns the number of crank revolutions in one engine cycle.
func (d Description) CycleRevolutions() float64 {
	if d.Strokes == 2 {
		return 1
	}
	return 2
}

// CycleFrequency returns how many engine cycles per second the engine completes at rpm.
func (d Description) CycleFrequency(rpm float64) float64 {
	return rpm / 60 / d.CycleRevolutions()
}

// CylinderOffsets returns the phase offset added to the engine phase for each cylinder, as a
// fraction of one engine cycle. A cylinder fires when its shifted phase wraps to 0, so the
// cylinder listed at position i of the firing order fires when the engine phase reaches
// i/Cylinders. The Description must be valid.
func (d Description) CylinderOffsets() []float64 {
	offsets := make([]float64, d.Cylinders)
	if len(d.Offsets) > 0 {
		copy(offsets, d.Offsets)
		return offsets
	}
	for i := range offsets {
		c := i + 1
		if len(d.FiringOrder) > 0 {
			c = d.FiringOrder[i]
		}
		offsets[c-1] = float64((d.Cylinders-i)%d.Cylinders) / float64(d.Cylinders)
	}
	return offsets
}

// CylinderGains returns the amplitude of each cylinder. The Description must be valid.
func (d Description) CylinderGains() []float64 {
	gains := make([]float64, d.Cylinders)
	if len(d.Gains) > 0 {
		copy(gains, d.Gains)
		return gains
	}
	for i := range gains {
		gains[i] = 1
	}
	return gains
}
