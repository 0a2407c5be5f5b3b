package enginesound

import (
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidSampleRate is returned for a sample rate that is not positive.
var ErrInvalidSampleRate = errors.New("invalid sample rate")

// Streamer is able to stream a finite or infinite sequence of audio samples.
//
// Stream copies at most len(samples) next audio samples to the samples slice. Samples are stereo
// frames; mono sources write the same value to both channels.
//
// Stream returns the number of streamed samples and whether the Streamer is still alive. If it
// returns ok == false, the Streamer is drained (or errored) and Err reports why, if there was an
// error.
type Streamer interface {
	Stream(samples [][2]float64) (n int, ok bool)
	Err() error
}

// StreamSeeker is a finite Streamer which supports seeking to an arbitrary position.
type StreamSeeker interface {
	Streamer

	// Len returns the total number of samples of the Streamer.
	Len() int

	// Position returns the current position of the Streamer, counted in samples.
	Position() int

	// Seek sets the position of the Streamer to the provided value.
	Seek(p int) error
}

// StreamSeekCloser is a StreamSeeker backed by a resource that needs to be released, such as an
// open file.
type StreamSeekCloser interface {
	StreamSeeker
	Close() error
}

// StreamerFunc is a Streamer created by simply wrapping a streaming function (usually a closure,
// which encloses a time tracking variable). This sometimes simplifies creating new streamers.
type StreamerFunc func(samples [][2]float64) (n int, ok bool)

// Stream calls the wrapped streaming function.
func (sf StreamerFunc) Stream(samples [][2]float64) (n int, ok bool) {
	return sf(samples)
}

// Err always returns nil.
func (sf StreamerFunc) Err() error {
	return nil
}

// SampleRate is the number of samples per second.
type SampleRate int

// D returns the duration of n samples.
func (sr SampleRate) D(n int) time.Duration {
	return time.Second * time.Duration(n) / time.Duration(sr)
}

// N returns the number of samples that last for d duration, rounded to the nearest sample.
func (sr SampleRate) N(d time.Duration) int {
	return int((int64(d)*int64(sr) + int64(time.Second)/2) / int64(time.Second))
}

// Nyquist returns half the sample rate in Hertz.
func (sr SampleRate) Nyquist() float64 {
	return float64(sr) / 2
}

// Validate reports an error if sr is not a usable sample rate.
func (sr SampleRate) Validate() error {
	if sr <= 0 {
		return errors.Wrapf(ErrInvalidSampleRate, "%d Hz (must be positive)", int(sr))
	}
	return nil
}
