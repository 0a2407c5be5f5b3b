package wav_test

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faiface/enginesound"
	"github.com/faiface/enginesound/wav"
)

func sine(n int, freq float64, sr enginesound.SampleRate) []float64 {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.8 * math.Sin(2*math.Pi*freq*float64(i)/float64(sr))
	}
	return samples
}

func encodeFile(t *testing.T, s enginesound.Streamer, format enginesound.Format) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, wav.Encode(f, s, format))
	require.NoError(t, f.Close())
	return path
}

func decodeFile(t *testing.T, path string) (enginesound.StreamSeekCloser, enginesound.Format) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	s, format, err := wav.Decode(f)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, format
}

func drain(t *testing.T, s enginesound.Streamer) [][2]float64 {
	t.Helper()
	var all [][2]float64
	buf := make([][2]float64, 479)
	for {
		n, ok := s.Stream(buf)
		if !ok {
			break
		}
		all = append(all, buf[:n]...)
	}
	require.NoError(t, s.Err())
	return all
}

func TestEncodeDecodeMono(t *testing.T) {
	for _, precision := range []int{1, 2, 3} {
		want := sine(4801, 440, 48000)
		format := enginesound.Format{SampleRate: 48000, NumChannels: 1, Precision: precision}
		path := encodeFile(t, enginesound.Samples(want), format)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, int64(44+len(want)*precision), info.Size())

		s, got := decodeFile(t, path)
		assert.Equal(t, format, got)
		assert.Equal(t, len(want), s.Len())

		step := 2 / (math.Pow(2, float64(8*precision)) - 2)
		frames := drain(t, s)
		require.Len(t, frames, len(want))
		for i, frame := range frames {
			assert.Equal(t, frame[0], frame[1])
			if math.Abs(frame[0]-want[i]) > step {
				t.Fatalf("precision %d sample %d: decoded %v, encoded %v", precision, i, frame[0], want[i])
			}
		}
	}
}

func TestEncodeDecodeStereo(t *testing.T) {
	left, right := sine(1000, 100, 8000), sine(1000, 300, 8000)
	i := 0
	s := enginesound.Take(len(left), enginesound.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for j := range samples {
			samples[j] = [2]float64{left[i], right[i]}
			i++
		}
		return len(samples), true
	}))
	format := enginesound.Format{SampleRate: 8000, NumChannels: 2, Precision: 2}
	decoded, _ := decodeFile(t, encodeFile(t, s, format))

	frames := drain(t, decoded)
	require.Len(t, frames, len(left))
	for i, frame := range frames {
		assert.InDelta(t, left[i], frame[0], 1.0/32767)
		assert.InDelta(t, right[i], frame[1], 1.0/32767)
	}
}

func TestHeaderSizes(t *testing.T) {
	path := encodeFile(t, enginesound.Samples(make([]float64, 100)), enginesound.Mono(22050))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, 244)

	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, uint32(236), binary.LittleEndian.Uint32(data[4:8]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[22:24]))
	assert.Equal(t, uint32(22050), binary.LittleEndian.Uint32(data[24:28]))
	assert.Equal(t, uint32(44100), binary.LittleEndian.Uint32(data[28:32]))
	assert.Equal(t, "data", string(data[36:40]))
	assert.Equal(t, uint32(200), binary.LittleEndian.Uint32(data[40:44]))
}

func TestEncodeRejectsBadFormat(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "bad.wav"))
	require.NoError(t, err)
	defer f.Close()

	assert.Error(t, wav.Encode(f, enginesound.Samples(nil), enginesound.Format{SampleRate: 44100, NumChannels: 1, Precision: 4}))
	assert.Error(t, wav.Encode(f, enginesound.Samples(nil), enginesound.Format{SampleRate: 44100, Precision: 2}))
	assert.ErrorIs(t, wav.Encode(f, enginesound.Samples(nil), enginesound.Mono(0)), enginesound.ErrInvalidSampleRate)
}

func TestDecodeTruncated(t *testing.T) {
	path := encodeFile(t, enginesound.Samples(sine(1000, 440, 44100)), enginesound.Mono(44100))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)-501], 0o644))

	s, _ := decodeFile(t, path)
	var total int
	buf := make([][2]float64, 256)
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			break
		}
	}
	assert.Equal(t, 749, total)
	assert.Error(t, s.Err())
}

func TestDecodeRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.wav")
	require.NoError(t, os.WriteFile(path, make([]byte, 64), 0o644))
	f, err := os.Open(path)
	require.NoError(t, err)
	_, _, err = wav.Decode(f)
	assert.Error(t, err)
}

func TestDecodedLoop(t *testing.T) {
	want := sine(300, 1000, 8000)
	s, _ := decodeFile(t, encodeFile(t, enginesound.Samples(want), enginesound.Mono(8000)))

	frames := drain(t, enginesound.Loop(3, s))
	require.Len(t, frames, 900)
	for i, frame := range frames {
		assert.InDelta(t, want[i%300], frame[0], 1.0/32767)
	}
}
