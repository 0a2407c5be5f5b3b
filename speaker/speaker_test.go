package speaker

import (
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faiface/enginesound"
)

func decode(buf []byte) [][2]int16 {
	frames := make([][2]int16, len(buf)/4)
	for i := range frames {
		frames[i][0] = int16(binary.LittleEndian.Uint16(buf[i*4:]))
		frames[i][1] = int16(binary.LittleEndian.Uint16(buf[i*4+2:]))
	}
	return frames
}

func TestRenderPlaysThenSilence(t *testing.T) {
	r := newRender(enginesound.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}, 8)
	Play(enginesound.Samples([]float64{1, -1, 0.5}))
	defer Clear()

	frames := decode(r.next())
	require.Len(t, frames, 8)
	assert.Equal(t, [2]int16{32767, 32767}, frames[0])
	assert.Equal(t, [2]int16{-32767, -32767}, frames[1])
	assert.Equal(t, [2]int16{16383, 16383}, frames[2])
	for _, f := range frames[3:] {
		assert.Equal(t, [2]int16{}, f)
	}

	Lock()
	assert.Nil(t, playing)
	Unlock()
}

func TestRenderKeepsPullingAcrossBuffers(t *testing.T) {
	r := newRender(enginesound.Format{SampleRate: 8000, NumChannels: 2, Precision: 2}, 4)
	data := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
	Play(enginesound.Samples(data))
	defer Clear()

	frames := append(decode(r.next()), decode(r.next())...)
	for i, x := range data {
		assert.Equal(t, int16(x*32767), frames[i][0])
	}
	assert.Equal(t, [2]int16{}, frames[7])
}

func TestRenderRecordsStreamerError(t *testing.T) {
	r := newRender(enginesound.Format{SampleRate: 8000, NumChannels: 2, Precision: 2}, 4)
	Play(failing{})
	defer func() {
		mu.Lock()
		lastErr = nil
		mu.Unlock()
	}()

	r.next()
	assert.Error(t, Err())
}

type failing struct{}

func (failing) Stream([][2]float64) (int, bool) { return 0, false }
func (failing) Err() error                      { return errors.New("device unplugged") }

func TestInitRejectsBadArguments(t *testing.T) {
	assert.ErrorIs(t, Init(0, 512), enginesound.ErrInvalidSampleRate)
	assert.Error(t, Init(44100, 0))
}
