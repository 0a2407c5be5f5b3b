package recorder

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Curve is the gain law of a crossfade.
type Curve int

const (
	// Linear fades with gains 1-t and t. Correlated signals keep a constant amplitude.
	Linear Curve = iota
	// EqualPower fades with gains cos(tπ/2) and sin(tπ/2). Uncorrelated signals keep a constant
	// loudness.
	EqualPower
)

// ParseCurve parses "linear" or "equal-power" (case-insensitive).
func ParseCurve(s string) (Curve, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear", "":
		return Linear, nil
	case "equal-power", "equalpower", "power":
		return EqualPower, nil
	}
	return Linear, errors.Errorf("recorder: unknown crossfade curve %q", s)
}

func (c Curve) String() string {
	switch c {
	case Linear:
		return "linear"
	case EqualPower:
		return "equal-power"
	}
	return "unknown"
}

// Gains returns the gain of the outgoing and the incoming signal at position t in [0, 1].
func (c Curve) Gains(t float64) (out, in float64) {
	if c == EqualPower {
		return math.Cos(t * math.Pi / 2), math.Sin(t * math.Pi / 2)
	}
	return 1 - t, t
}

// Crossfade returns a copy of raw prepared for seamless looping, crossfaded over width samples
// centered on the loop point.
//
// The result is width/2 samples shorter than raw. Its first width/2 samples blend the dropped
// tail of raw (fading out) into the head of raw (fading in):
//
//	out[i] = raw[L-h+i]*(1-t) + raw[i]*t,  t = i/h,  h = width/2,  i in [0, h)
//
// followed by raw[h:L-h] unchanged. Played back to back, the last sample of the result is
// followed by what was raw's next sample, and the fade hands over to raw's head by the time the
// unchanged part begins. A width of 0 returns an exact copy of raw.
func Crossfade(raw []float64, width int, curve Curve) ([]float64, error) {
	if width < 0 {
		return nil, errors.Wrapf(ErrCrossfadeTooLong, "negative width %d", width)
	}
	if width > len(raw) {
		return nil, errors.Wrapf(ErrCrossfadeTooLong, "width %d exceeds the %d recorded samples", width, len(raw))
	}
	h := width / 2
	out := make([]float64, len(raw)-h)
	copy(out, raw[:len(out)])
	if h == 0 {
		return out, nil
	}
	tail := raw[len(raw)-h:]
	for i := 0; i < h; i++ {
		fadeOut, fadeIn := curve.Gains(float64(i) / float64(h))
		out[i] = tail[i]*fadeOut + raw[i]*fadeIn
	}
	return out, nil
}
