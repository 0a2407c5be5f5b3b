package effects

import (
	"math"

	"github.com/faiface/enginesound"
)

// Gain scales the wrapped Streamer by a linear gain. The Generator has a volume of its own;
// Gain is for sources that do not, such as a decoded recording.
type Gain struct {
	Streamer enginesound.Streamer
	Gain     float64
	Muted    bool
}

// Stream streams the scaled samples. A negative or NaN Gain is treated as 0.
func (g *Gain) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = g.Streamer.Stream(samples)
	gain := math.Max(g.Gain, 0)
	if g.Muted || math.IsNaN(g.Gain) {
		gain = 0
	}
	for i := range samples[:n] {
		samples[i][0] *= gain
		samples[i][1] *= gain
	}
	return n, ok
}

func (g *Gain) Err() error {
	return g.Streamer.Err()
}
