package pcm_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faiface/enginesound"
	"github.com/faiface/enginesound/pcm"
)

func TestEncodeMono16(t *testing.T) {
	var buf bytes.Buffer
	data := []float64{0, 0.5, -0.5, 1, -1}
	require.NoError(t, pcm.Encode(&buf, enginesound.Samples(data), enginesound.Mono(44100)))
	require.Equal(t, 10, buf.Len())

	want := []int16{0, 16383, -16383, 32767, -32767}
	for i, x := range want {
		assert.Equal(t, x, int16(binary.LittleEndian.Uint16(buf.Bytes()[2*i:])), "sample %d", i)
	}
}

func TestEncodeUnsigned8(t *testing.T) {
	var buf bytes.Buffer
	format := enginesound.Format{SampleRate: 8000, NumChannels: 1, Precision: 1}
	require.NoError(t, pcm.Encode(&buf, enginesound.Samples([]float64{-1, 1}), format))
	assert.Equal(t, []byte{0, 255}, buf.Bytes())
}

func TestEncodeLongStream(t *testing.T) {
	var buf bytes.Buffer
	format := enginesound.Format{SampleRate: 8000, NumChannels: 2, Precision: 3}
	require.NoError(t, pcm.Encode(&buf, enginesound.Samples(make([]float64, 1500)), format))
	assert.Equal(t, 1500*6, buf.Len())
}

func TestEncodeReportsStreamerError(t *testing.T) {
	err := pcm.Encode(new(bytes.Buffer), failing{}, enginesound.Mono(8000))
	assert.ErrorContains(t, err, "broken")
}

func TestEncodeRejectsFormat(t *testing.T) {
	assert.Error(t, pcm.Encode(new(bytes.Buffer), enginesound.Samples(nil), enginesound.Format{SampleRate: 8000, NumChannels: 1, Precision: 4}))
	assert.Error(t, pcm.Encode(new(bytes.Buffer), enginesound.Samples(nil), enginesound.Format{SampleRate: 8000, Precision: 2}))
}

type failing struct{}

func (failing) Stream([][2]float64) (int, bool) { return 0, false }
func (failing) Err() error                      { return errors.New("broken") }
