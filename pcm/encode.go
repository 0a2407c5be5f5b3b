// Package pcm streams audio as headerless PCM, for piping the live engine into another program.
package pcm

import (
	"bufio"
	"io"

	"github.com/pkg/errors"

	"github.com/faiface/enginesound"
)

// Encode writes all audio streamed from s to w in raw little-endian PCM. Precision 1 is unsigned,
// 2 and 3 are signed, as in WAVE files. The buffered output is flushed after every block, so a
// reader on the other end of a pipe hears the engine with little delay.
func Encode(w io.Writer, s enginesound.Streamer, format enginesound.Format) error {
	if format.NumChannels <= 0 {
		return errors.New("pcm: invalid number of channels (less than 1)")
	}
	if format.Precision < 1 || format.Precision > 3 {
		return errors.New("pcm: unsupported precision, 1, 2 or 3 is supported")
	}
	var (
		bw      = bufio.NewWriter(w)
		samples = make([][2]float64, 512)
		buffer  = make([]byte, len(samples)*format.Width())
	)
	for {
		n, ok := s.Stream(samples)
		if !ok {
			if err := bw.Flush(); err != nil {
				return errors.Wrap(err, "pcm")
			}
			return errors.Wrap(s.Err(), "pcm: streamer")
		}
		var offset int
		for _, sample := range samples[:n] {
			if format.Precision == 1 {
				offset += format.EncodeUnsigned(buffer[offset:], sample)
			} else {
				offset += format.EncodeSigned(buffer[offset:], sample)
			}
		}
		if _, err := bw.Write(buffer[:offset]); err != nil {
			return errors.Wrap(err, "pcm")
		}
		if err := bw.Flush(); err != nil {
			return errors.Wrap(err, "pcm")
		}
	}
}
