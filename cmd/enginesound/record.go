package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/faiface/enginesound"
	"github.com/faiface/enginesound/effects"
	"github.com/faiface/enginesound/engine"
	"github.com/faiface/enginesound/pcm"
	"github.com/faiface/enginesound/recorder"
	"github.com/faiface/enginesound/speaker"
	"github.com/faiface/enginesound/stream"
	"github.com/faiface/enginesound/wav"
)

// loopCycles is the number of engine cycles suggested for a loop.
const loopCycles = 10

func (opts options) recorderConfig(warmup bool) recorder.Config {
	cfg := recorder.Config{
		SampleRate: opts.sampleRate,
		Duration:   opts.length,
		Crossfade:  opts.crossfade,
		Curve:      opts.curve,
	}
	if warmup {
		cfg.Warmup = opts.warmup
	}
	return cfg
}

func recordHeadless(ctx context.Context, opts options, d engine.Description) error {
	g, err := opts.generator(d)
	if err != nil {
		return err
	}
	r, err := recorder.New(stream.New(g, opts.sampleRate), opts.recorderConfig(true))
	if err != nil {
		return err
	}

	log.Printf("recording %v of %s at %.0f RPM after %v of warmup", opts.length, d.Name, g.RPM(), opts.warmup)
	rec, err := r.Record(ctx)
	if err != nil {
		return err
	}
	if err := writeRecording(opts.output, rec, opts.precision); err != nil {
		return err
	}
	log.Printf("wrote %v loop (%v %s crossfade) to %s", rec.Duration(), opts.crossfade, opts.curve, opts.output)
	if rpm := g.RPM(); rpm > 0 {
		log.Printf("hint: -length %v holds exactly %d engine cycles at %.0f RPM",
			recorder.RecommendedLength(rpm, d.Strokes, loopCycles, opts.crossfade), loopCycles, rpm)
	}
	return nil
}

// writeRecording stores rec at path as a WAV file with the given bytes per sample.
func writeRecording(path string, rec *recorder.Recording, precision int) (err error) {
	format := rec.Format
	format.Precision = precision

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create recording")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "close recording")
		}
	}()
	return wav.Encode(f, rec.Streamer(), format)
}

// playFile loops a recorded file through the speakers until ctx ends or the requested number of
// loops has played.
func playFile(ctx context.Context, opts options) error {
	f, err := os.Open(opts.play)
	if err != nil {
		return errors.Wrap(err, "open recording")
	}
	s, format, err := wav.Decode(f)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(audioLatency)); err != nil {
		return err
	}
	defer speaker.Close()

	var src enginesound.Streamer = enginesound.Loop(opts.loops, s)
	if format.NumChannels > 1 {
		src = effects.Mono(src)
	}
	done := make(chan struct{})
	speaker.Play(enginesound.Seq(
		&effects.Gain{Streamer: src, Gain: opts.volume},
		enginesound.Callback(func() { close(done) }),
	))

	log.Printf("playing %s, %v per loop", opts.play, format.SampleRate.D(s.Len()))
	select {
	case <-done:
	case <-ctx.Done():
		pos := stopPlayback(s)
		log.Printf("stopped at %v of %v", format.SampleRate.D(pos), format.SampleRate.D(s.Len()))
	}
	return speaker.Err()
}

// stopPlayback clears the speaker and returns the position s was interrupted at.
func stopPlayback(s enginesound.StreamSeeker) int {
	speaker.Lock()
	pos := s.Position()
	speaker.Unlock()
	speaker.Clear()
	return pos
}

// pipeEngine writes the engine to w as raw mono PCM until ctx ends or, if opts.duration is
// positive, until that much audio was written.
func pipeEngine(ctx context.Context, opts options, d engine.Description, w io.Writer) error {
	g, err := opts.generator(d)
	if err != nil {
		return err
	}
	format := enginesound.Mono(opts.sampleRate)
	format.Precision = opts.precision

	log.Printf("streaming %s at %.0f RPM: %d Hz, mono, %d bit", d.Name, g.RPM(), format.SampleRate, 8*format.Precision)
	var live enginesound.Streamer = enginesound.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		if ctx.Err() != nil {
			return 0, false
		}
		return g.Stream(samples)
	})
	if opts.duration > 0 {
		live = enginesound.Take(opts.sampleRate.N(opts.duration), live)
	}
	return pcm.Encode(w, live, format)
}
