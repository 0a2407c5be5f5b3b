package enginesound

import "github.com/pkg/errors"

// Callback returns a Streamer, which does not stream any samples, but instead calls f the first
// time its Stream method is called.
func Callback(f func()) Streamer {
	return StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		if f != nil {
			f()
			f = nil
		}
		return 0, false
	})
}

// Samples returns a StreamSeeker over a mono sample slice. Each sample is written to both
// channels of the streamed frames. The slice is not copied.
func Samples(data []float64) StreamSeeker {
	return &samplesStreamer{data: data}
}

type samplesStreamer struct {
	data []float64
	pos  int
}

func (s *samplesStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= len(s.data) {
		return 0, false
	}
	for n < len(samples) && s.pos < len(s.data) {
		x := s.data[s.pos]
		samples[n] = [2]float64{x, x}
		n++
		s.pos++
	}
	return n, true
}

func (s *samplesStreamer) Err() error {
	return nil
}

func (s *samplesStreamer) Len() int {
	return len(s.data)
}

func (s *samplesStreamer) Position() int {
	return s.pos
}

func (s *samplesStreamer) Seek(p int) error {
	if p < 0 || p > len(s.data) {
		return errors.Errorf("seek position %v out of range [%v, %v]", p, 0, len(s.data))
	}
	s.pos = p
	return nil
}
