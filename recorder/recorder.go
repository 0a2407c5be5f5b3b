// Package recorder captures a span of engine sound and turns it into a seamless loop.
package recorder

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/faiface/enginesound"
)

var (
	// ErrEmptyRecording is returned when the requested duration is shorter than one sample.
	ErrEmptyRecording = errors.New("recorder: empty recording")
	// ErrCrossfadeTooLong is returned when the crossfade is wider than the recording.
	ErrCrossfadeTooLong = errors.New("recorder: crossfade too long")
)

// DefaultChunkSize is the number of samples requested from the source at a time.
const DefaultChunkSize = 1024

// Source delivers consecutive samples. *stream.Exact is a Source.
type Source interface {
	Read(samples []float64) int
	Err() error
}

// State is the progress of a Recorder.
type State int32

const (
	Idle State = iota
	Recording
	Crossfading
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Crossfading:
		return "crossfading"
	case Done:
		return "done"
	}
	return "unknown"
}

// Config describes a recording.
type Config struct {
	SampleRate enginesound.SampleRate
	// Duration of the raw capture. The finished loop is Crossfade/2 shorter.
	Duration  time.Duration
	Crossfade time.Duration
	// ChunkSize defaults to DefaultChunkSize.
	ChunkSize int
	Curve     Curve
	// Warmup is discarded before the capture starts.
	Warmup time.Duration
}

// Samples returns the number of raw samples to capture.
func (c Config) Samples() int {
	return c.SampleRate.N(c.Duration)
}

// CrossfadeSamples returns the crossfade width in samples.
func (c Config) CrossfadeSamples() int {
	return c.SampleRate.N(c.Crossfade)
}

// Recorder captures a fixed number of samples from its Source and crossfades them. A Recorder
// records once.
type Recorder struct {
	src   Source
	cfg   Config
	total int
	width int
	warm  int
	state atomic.Int32
}

// New validates cfg and creates a Recorder reading from src. The Recorder should be the only
// consumer of src.
func New(src Source, cfg Config) (*Recorder, error) {
	if err := cfg.SampleRate.Validate(); err != nil {
		return nil, errors.Wrap(err, "recorder")
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	r := &Recorder{
		src:   src,
		cfg:   cfg,
		total: cfg.Samples(),
		width: cfg.CrossfadeSamples(),
		warm:  cfg.SampleRate.N(cfg.Warmup),
	}
	if r.total <= 0 {
		return nil, errors.Wrapf(ErrEmptyRecording, "%v at %d Hz", cfg.Duration, cfg.SampleRate)
	}
	if r.width < 0 || r.width > r.total {
		return nil, errors.Wrapf(ErrCrossfadeTooLong, "%v (%d samples) over %v (%d samples)",
			cfg.Crossfade, r.width, cfg.Duration, r.total)
	}
	if r.warm < 0 {
		r.warm = 0
	}
	return r, nil
}

// State returns the current state. It is safe to call from any goroutine.
func (r *Recorder) State() State {
	return State(r.state.Load())
}

// Config returns the configuration with defaults filled in.
func (r *Recorder) Config() Config {
	return r.cfg
}

// Record discards the warmup, captures the configured number of samples chunk by chunk and
// returns them crossfaded. The context is checked between chunks; if it ends, the partial capture
// is dropped and the context's error returned.
func (r *Recorder) Record(ctx context.Context) (*Recording, error) {
	if !r.state.CompareAndSwap(int32(Idle), int32(Recording)) {
		return nil, errors.Errorf("recorder: already %v", r.State())
	}

	chunk := make([]float64, r.cfg.ChunkSize)
	for left := r.warm; left > 0; {
		if err := ctx.Err(); err != nil {
			return nil, r.abandon(err)
		}
		n := r.read(chunk[:min(left, len(chunk))])
		if n == 0 {
			return nil, r.abandon(errors.Wrap(r.sourceErr(), "recorder: warmup"))
		}
		left -= n
	}

	raw := make([]float64, 0, r.total)
	for len(raw) < r.total {
		if err := ctx.Err(); err != nil {
			return nil, r.abandon(err)
		}
		n := r.read(chunk[:min(r.total-len(raw), len(chunk))])
		if n == 0 {
			return nil, r.abandon(errors.Wrapf(r.sourceErr(), "recorder: captured %d of %d samples", len(raw), r.total))
		}
		raw = append(raw, chunk[:n]...)
	}

	r.state.Store(int32(Crossfading))
	samples, err := Crossfade(raw, r.width, r.cfg.Curve)
	if err != nil {
		return nil, r.abandon(err)
	}
	r.state.Store(int32(Done))
	return &Recording{Samples: samples, Format: enginesound.Mono(r.cfg.SampleRate)}, nil
}

func (r *Recorder) read(samples []float64) int {
	if len(samples) == 0 {
		return 0
	}
	return r.src.Read(samples)
}

func (r *Recorder) sourceErr() error {
	if err := r.src.Err(); err != nil {
		return err
	}
	return errors.New("source delivered no samples")
}

// abandon leaves the Recorder in the Done state without a recording.
func (r *Recorder) abandon(err error) error {
	r.state.Store(int32(Done))
	return err
}

// Recording is a finished, loopable capture.
type Recording struct {
	Samples []float64
	Format  enginesound.Format
}

// Len returns the number of samples.
func (rec *Recording) Len() int {
	return len(rec.Samples)
}

// Duration returns the playing time of the recording.
func (rec *Recording) Duration() time.Duration {
	return rec.Format.SampleRate.D(len(rec.Samples))
}

// Streamer returns a new StreamSeeker over the samples. Loop it to audition the seam.
func (rec *Recording) Streamer() enginesound.StreamSeeker {
	return enginesound.Samples(rec.Samples)
}

// RecommendedLength returns a raw capture length holding exactly cycles engine cycles after the
// crossfade removed its half, so the loop ends on a cycle boundary.
func RecommendedLength(rpm float64, strokes, cycles int, crossfade time.Duration) time.Duration {
	if rpm <= 0 || strokes <= 0 || cycles <= 0 {
		return crossfade / 2
	}
	wavelength := 60 * (float64(strokes) / 2) / rpm
	return time.Duration(math.Round(float64(cycles)*wavelength*float64(time.Second))) + crossfade/2
}
