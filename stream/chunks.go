package stream

import "github.com/pkg/errors"

// ErrClosed is reported by a Fanout subscription after the Fanout stopped and every chunk it
// sent has been read.
var ErrClosed = errors.New("stream: fanout closed")

// chunkSource turns a channel of fixed-size chunks into a source of any-size reads. The part of a
// chunk a read did not need is kept for the next read.
type chunkSource struct {
	chunks <-chan []float64
	rem    []float64
	closed bool
}

func (c *chunkSource) fill(samples []float64) (n int) {
	for n < len(samples) {
		if len(c.rem) == 0 {
			if c.closed {
				break
			}
			chunk, ok := <-c.chunks
			if !ok {
				c.closed = true
				break
			}
			c.rem = chunk
		}
		k := copy(samples[n:], c.rem)
		c.rem = c.rem[k:]
		n += k
	}
	return n
}

func (c *chunkSource) err() error {
	if c.closed && len(c.rem) == 0 {
		return ErrClosed
	}
	return nil
}
