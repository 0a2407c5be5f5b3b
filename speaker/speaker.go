// Package speaker implements playback of an enginesound.Streamer through physical speakers.
package speaker

import (
	"sync"

	"github.com/hajimehoshi/oto"
	"github.com/pkg/errors"

	"github.com/faiface/enginesound"
)

const (
	channelCount    = 2
	bitDepthInBytes = 2
)

var (
	mu       sync.Mutex
	playing  enginesound.Streamer
	lastErr  error
	renderer *render

	context *oto.Context
	player  *oto.Player
	done    chan struct{}
	stopped sync.WaitGroup
)

// Init initializes audio playback through speaker. Must be called before using this package.
//
// The bufferSize argument specifies the number of samples of the speaker's buffer. Bigger
// bufferSize means lower CPU usage and more reliable playback. Lower bufferSize means better
// responsiveness and less delay, which matters when the RPM is changed live.
func Init(sampleRate enginesound.SampleRate, bufferSize int) error {
	if err := sampleRate.Validate(); err != nil {
		return errors.Wrap(err, "speaker")
	}
	if bufferSize <= 0 {
		return errors.Errorf("speaker: invalid buffer size %d", bufferSize)
	}
	Close()

	format := enginesound.Format{SampleRate: sampleRate, NumChannels: channelCount, Precision: bitDepthInBytes}
	var err error
	context, err = oto.NewContext(int(sampleRate), channelCount, bitDepthInBytes, bufferSize*format.Width())
	if err != nil {
		return errors.Wrap(err, "failed to initialize speaker")
	}
	player = context.NewPlayer()
	renderer = newRender(format, bufferSize)

	done = make(chan struct{})
	stopped.Add(1)
	go func(done <-chan struct{}, p *oto.Player, r *render) {
		defer stopped.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			if _, err := p.Write(r.next()); err != nil {
				mu.Lock()
				lastErr = errors.Wrap(err, "speaker: write")
				mu.Unlock()
				return
			}
		}
	}(done, player, renderer)

	return nil
}

// Close stops the playback and releases the audio device. Init may be called again afterwards.
func Close() {
	if done == nil {
		return
	}
	close(done)
	stopped.Wait()
	done = nil
	player.Close()
	context.Close()
	player, context = nil, nil
	Clear()
}

// Lock locks the speaker. While locked, speaker won't pull new data from the playing Streamer.
// Lock if you want to modify the currently playing Streamer to avoid race conditions.
//
// Always lock speaker for as little time as possible, to avoid playback glitches.
func Lock() {
	mu.Lock()
}

// Unlock unlocks the speaker. Call after modifying the currently playing Streamer.
func Unlock() {
	mu.Unlock()
}

// Play starts playing s through the speaker, replacing whatever was playing. Once s is drained
// the speaker plays silence.
func Play(s enginesound.Streamer) {
	mu.Lock()
	playing = s
	mu.Unlock()
}

// Clear stops playing the current Streamer.
func Clear() {
	mu.Lock()
	playing = nil
	mu.Unlock()
}

// Err returns the error of the last Streamer that drained with one, or of the audio device.
func Err() error {
	mu.Lock()
	defer mu.Unlock()
	return lastErr
}

// render pulls one buffer of samples from the playing Streamer and encodes it for the device.
type render struct {
	format  enginesound.Format
	samples [][2]float64
	buf     []byte
}

func newRender(format enginesound.Format, bufferSize int) *render {
	return &render{
		format:  format,
		samples: make([][2]float64, bufferSize),
		buf:     make([]byte, bufferSize*format.Width()),
	}
}

func (r *render) next() []byte {
	mu.Lock()
	n := 0
	for n < len(r.samples) && playing != nil {
		sn, ok := playing.Stream(r.samples[n:])
		n += sn
		if !ok {
			if err := playing.Err(); err != nil {
				lastErr = errors.Wrap(err, "speaker: streamer")
			}
			playing = nil
		} else if sn == 0 {
			break
		}
	}
	mu.Unlock()

	for i := n; i < len(r.samples); i++ {
		r.samples[i] = [2]float64{}
	}
	p := r.buf
	for _, sample := range r.samples {
		p = p[r.format.EncodeSigned(p, sample):]
	}
	return r.buf
}
