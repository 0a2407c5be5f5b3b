package generators

import "math"

// Pulse returns a band-limited pulse at phase t (in cycles, [0, 1)): the sum of the first n
// cosine harmonics with amplitudes 1, rolloff, rolloff², ..., normalized so the peak at t = 0 is
// exactly 1. A rolloff close to 1 gives a sharp click, a small one a soft thump.
func Pulse(t float64, n int, rolloff float64) float64 {
	if n < 1 {
		return 0
	}
	c1 := math.Cos(2 * math.Pi * t)
	// cos((k+1)x) = 2cos(x)cos(kx) - cos((k-1)x)
	prev, curr := 1.0, c1
	amp, sum, norm := 1.0, 0.0, 0.0
	for k := 1; k <= n; k++ {
		sum += amp * curr
		norm += amp
		amp *= rolloff
		prev, curr = curr, 2*c1*curr-prev
	}
	return sum / norm
}

// OddHarmonics returns the sum of the first n odd sine harmonics at phase t, each with amplitude
// 1/k, normalized by the sum of the amplitudes so the result stays in [-1, 1]. With enough
// harmonics it approaches a square wave.
func OddHarmonics(t float64, n int) float64 {
	if n < 1 {
		return 0
	}
	s1, c1 := math.Sincos(2 * math.Pi * t)
	c2 := 2*c1*c1 - 1
	// sin((k+2)x) = 2cos(2x)sin(kx) - sin((k-2)x), starting from sin(-x) and sin(x)
	prev, curr := -s1, s1
	sum, norm := 0.0, 0.0
	for j := 0; j < n; j++ {
		k := float64(2*j + 1)
		sum += curr / k
		norm += 1 / k
		prev, curr = curr, 2*c2*curr-prev
	}
	return sum / norm
}

// Noise returns a pseudo-random value in [-1, 1) derived from t alone. The same t always yields
// the same value, which keeps the oscillators pure functions of the engine phase.
func Noise(t float64) float64 {
	// splitmix64 finalizer
	z := math.Float64bits(t) + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	return float64(z>>11)/(1<<53)*2 - 1
}
