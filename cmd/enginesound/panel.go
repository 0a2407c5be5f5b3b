package main

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode"

	"github.com/gdamore/tcell"

	"github.com/faiface/enginesound/analysis"
	"github.com/faiface/enginesound/effects"
	"github.com/faiface/enginesound/engine"
	"github.com/faiface/enginesound/generators"
	"github.com/faiface/enginesound/recorder"
	"github.com/faiface/enginesound/speaker"
	"github.com/faiface/enginesound/stream"
)

const (
	audioLatency   = time.Second / 30
	playbackDepth  = 4
	recordingDepth = 16
	spectrumSize   = 4096
	spectrumBands  = 48
)

func drawTextLine(screen tcell.Screen, x, y int, s string, style tcell.Style) {
	for _, r := range s {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}

type controlPanel struct {
	desc   engine.Description
	opts   options
	gen    *generators.Generator
	fanout *stream.Fanout
	tap    *effects.Tap

	wg     sync.WaitGroup
	mu     sync.Mutex
	rec    *recorder.Recorder
	status string
}

func newControlPanel(opts options, d engine.Description, g *generators.Generator, f *stream.Fanout, tap *effects.Tap) *controlPanel {
	return &controlPanel{
		desc:   d,
		opts:   opts,
		gen:    g,
		fanout: f,
		tap:    tap,
		status: "press [R] to record a loop to " + opts.output,
	}
}

func (cp *controlPanel) draw(screen tcell.Screen) {
	mainStyle := tcell.StyleDefault.
		Background(tcell.NewHexColor(0x202830)).
		Foreground(tcell.NewHexColor(0xC8D0D8))
	statusStyle := mainStyle.
		Foreground(tcell.NewHexColor(0xF0B040)).
		Bold(true)

	screen.Fill(' ', mainStyle)

	drawTextLine(screen, 0, 0, fmt.Sprintf("Engine: %s (%d cylinders, %d strokes)", cp.desc.Name, cp.gen.Cylinders(), cp.desc.Strokes), mainStyle)
	drawTextLine(screen, 0, 1, "Press [ESC] to quit.", mainStyle)
	drawTextLine(screen, 0, 2, "Press [R] to record a loop.", mainStyle)

	samples := cp.tap.Samples(spectrumSize)
	sr := cp.gen.SampleRate()

	drawTextLine(screen, 0, 4, "RPM    (Up/Down, PgUp/PgDn):", mainStyle)
	drawTextLine(screen, 29, 4, fmt.Sprintf("%.0f", cp.gen.RPM()), statusStyle)

	drawTextLine(screen, 0, 5, "Volume (A/S):", mainStyle)
	drawTextLine(screen, 29, 5, fmt.Sprintf("%.2f", cp.gen.Volume()), statusStyle)

	drawTextLine(screen, 0, 6, "Recorder:", mainStyle)
	drawTextLine(screen, 29, 6, cp.recorderState().String(), statusStyle)

	drawTextLine(screen, 0, 7, "Peak:", mainStyle)
	drawTextLine(screen, 29, 7, fmt.Sprintf("%.1f Hz", analysis.Peak(samples, sr)), statusStyle)

	drawTextLine(screen, 0, 9, analysis.Bars(analysis.Spectrum(samples, sr, spectrumBands)), statusStyle)

	cp.mu.Lock()
	drawTextLine(screen, 0, 11, cp.status, mainStyle)
	cp.mu.Unlock()
}

func (cp *controlPanel) recorderState() recorder.State {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	if cp.rec == nil {
		return recorder.Idle
	}
	return cp.rec.State()
}

func (cp *controlPanel) setStatus(format string, args ...interface{}) {
	cp.mu.Lock()
	cp.status = fmt.Sprintf(format, args...)
	cp.mu.Unlock()
}

func (cp *controlPanel) handle(ctx context.Context, event tcell.Event) (changed, quit bool) {
	switch event := event.(type) {
	case *tcell.EventKey:
		switch event.Key() {
		case tcell.KeyESC, tcell.KeyCtrlC:
			return false, true
		case tcell.KeyUp:
			cp.gen.SetRPM(cp.gen.RPM() + 100)
			return true, false
		case tcell.KeyDown:
			cp.gen.SetRPM(cp.gen.RPM() - 100)
			return true, false
		case tcell.KeyPgUp:
			cp.gen.SetRPM(cp.gen.RPM() + 1000)
			return true, false
		case tcell.KeyPgDn:
			cp.gen.SetRPM(cp.gen.RPM() - 1000)
			return true, false
		case tcell.KeyRune:
		default:
			return false, false
		}

		switch unicode.ToLower(event.Rune()) {
		case 'a':
			cp.gen.SetVolume(cp.gen.Volume() - 0.05)
			return true, false
		case 's':
			cp.gen.SetVolume(cp.gen.Volume() + 0.05)
			return true, false
		case 'r':
			return cp.record(ctx), false
		}
	}
	return false, false
}

// record starts a recording on its own subscription of the running engine. It reports false if a
// recording is already in progress.
func (cp *controlPanel) record(ctx context.Context) bool {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	if cp.rec != nil && cp.rec.State() != recorder.Done {
		return false
	}

	sub := cp.fanout.Subscribe(recordingDepth)
	r, err := recorder.New(sub, cp.opts.recorderConfig(false))
	if err != nil {
		cp.fanout.Unsubscribe(sub)
		cp.status = err.Error()
		return true
	}
	cp.rec = r
	cp.status = fmt.Sprintf("recording %v at %.0f RPM...", cp.opts.length, cp.gen.RPM())

	cp.wg.Add(1)
	go func() {
		defer cp.wg.Done()
		rec, err := r.Record(ctx)
		cp.fanout.Unsubscribe(sub)
		if err == nil {
			err = writeRecording(cp.opts.output, rec, cp.opts.precision)
		}
		if err != nil {
			cp.setStatus("recording failed: %v", err)
			return
		}
		cp.setStatus("wrote %v loop to %s", rec.Duration(), cp.opts.output)
	}()
	return true
}

// wait blocks until a recording in progress has been written.
func (cp *controlPanel) wait() {
	cp.wg.Wait()
}

func runPanel(ctx context.Context, opts options, d engine.Description) error {
	g, err := opts.generator(d)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	fanout := stream.NewFanout(g, opts.sampleRate, stream.GeneratorBufferSize)
	tap := effects.NewTap(fanout.Subscribe(playbackDepth), spectrumSize)
	go fanout.Run(ctx)

	if err := speaker.Init(opts.sampleRate, opts.sampleRate.N(audioLatency)); err != nil {
		cancel()
		return err
	}
	speaker.Play(tap)

	screen, err := tcell.NewScreen()
	if err != nil {
		cancel()
		speaker.Close()
		return err
	}
	if err := screen.Init(); err != nil {
		cancel()
		speaker.Close()
		return err
	}

	cp := newControlPanel(opts, d, g, fanout, tap)
	defer func() {
		screen.Fini()
		cancel()
		speaker.Close()
		cp.wait()
	}()

	screen.Clear()
	cp.draw(screen)
	screen.Show()

	frames := time.NewTicker(time.Second / 15)
	defer frames.Stop()
	events := make(chan tcell.Event)
	go func() {
		for {
			events <- screen.PollEvent()
		}
	}()

	for {
		select {
		case event := <-events:
			changed, quit := cp.handle(ctx, event)
			if quit {
				return speaker.Err()
			}
			if changed {
				cp.draw(screen)
				screen.Show()
			}
		case <-frames.C:
			cp.draw(screen)
			screen.Show()
		case <-ctx.Done():
			return nil
		}
	}
}
