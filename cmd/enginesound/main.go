// Command enginesound synthesizes engine sound live and records it as seamless WAV loops.
//
// By default it plays the engine through the speakers and shows a control panel. With -headless
// it records one loop to a file and exits. With -play it loops a recorded file to audition the
// seam. With -pipe it writes the running engine to stdout as raw PCM, optionally bounded by
// -duration, for example:
//
//	enginesound -pipe -rpm 3000 | aplay -f S16_LE -c 1 -r 48000
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/errors"

	"github.com/faiface/enginesound"
	"github.com/faiface/enginesound/engine"
	"github.com/faiface/enginesound/generators"
	"github.com/faiface/enginesound/recorder"
)

type options struct {
	config      string
	headless    bool
	volume      float64
	rpm         float64
	rpmSet      bool
	warmup      time.Duration
	length      time.Duration
	output      string
	crossfade   time.Duration
	sampleRate  enginesound.SampleRate
	curve       recorder.Curve
	precision   int
	writeConfig string
	play        string
	loops       int
	pipe        bool
	duration    time.Duration
}

func parseOptions(args []string) (options, error) {
	var (
		opts       options
		sampleRate int
		curve      string
	)
	fs := flag.NewFlagSet("enginesound", flag.ContinueOnError)
	fs.StringVar(&opts.config, "config", "", "engine description to load (YAML or JSON), built-in inline-four if empty")
	fs.BoolVar(&opts.headless, "headless", false, "record a loop to -output without playing or showing the panel")
	fs.Float64Var(&opts.volume, "volume", 0.1, "output volume in [0, 1]")
	fs.Float64Var(&opts.rpm, "rpm", 0, "engine speed, overrides the description's rpm")
	fs.DurationVar(&opts.warmup, "warmup", 3*time.Second, "headless: time the engine runs before recording starts")
	fs.DurationVar(&opts.length, "length", 5*time.Second, "length of the raw recording")
	fs.StringVar(&opts.output, "output", "output.wav", "file recordings are written to")
	fs.DurationVar(&opts.crossfade, "crossfade", 1330*time.Microsecond, "width of the loop crossfade")
	fs.IntVar(&sampleRate, "samplerate", 48000, "sample rate in Hz")
	fs.StringVar(&curve, "curve", "linear", "crossfade curve: linear or equal-power")
	fs.IntVar(&opts.precision, "precision", 2, "bytes per recorded sample: 1, 2 or 3")
	fs.StringVar(&opts.writeConfig, "write-config", "", "write the engine description to this file and exit")
	fs.StringVar(&opts.play, "play", "", "loop a recorded WAV file through the speakers")
	fs.IntVar(&opts.loops, "loops", -1, "with -play: number of repetitions, negative loops forever")
	fs.BoolVar(&opts.pipe, "pipe", false, "stream the engine to stdout as raw PCM until interrupted")
	fs.DurationVar(&opts.duration, "duration", 0, "with -pipe: stop after this much audio, zero streams until interrupted")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, errors.Errorf("unexpected arguments: %v", fs.Args())
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "rpm" {
			opts.rpmSet = true
		}
	})

	opts.sampleRate = enginesound.SampleRate(sampleRate)
	if err := opts.sampleRate.Validate(); err != nil {
		return options{}, err
	}
	var err error
	if opts.curve, err = recorder.ParseCurve(curve); err != nil {
		return options{}, err
	}
	if opts.precision < 1 || opts.precision > 3 {
		return options{}, errors.Errorf("precision must be 1, 2 or 3 bytes, not %d", opts.precision)
	}
	return opts, nil
}

// description loads the engine to synthesize and applies the overrides given on the command line.
func (opts options) description() (engine.Description, error) {
	d := engine.Default()
	if opts.config != "" {
		var err error
		if d, err = engine.Load(opts.config); err != nil {
			return engine.Description{}, err
		}
	}
	if opts.rpmSet {
		d.RPM = opts.rpm
	}
	return d, nil
}

func (opts options) generator(d engine.Description) (*generators.Generator, error) {
	g, err := generators.NewGenerator(opts.sampleRate, d)
	if err != nil {
		return nil, err
	}
	g.SetVolume(opts.volume)
	return g, nil
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("enginesound: ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string) error {
	opts, err := parseOptions(args)
	if err != nil {
		return err
	}
	if opts.play != "" {
		return playFile(ctx, opts)
	}

	d, err := opts.description()
	if err != nil {
		return err
	}
	switch {
	case opts.writeConfig != "":
		if err := engine.Save(opts.writeConfig, d); err != nil {
			return err
		}
		log.Printf("wrote %s description to %s", d.Name, opts.writeConfig)
		return nil
	case opts.headless:
		return recordHeadless(ctx, opts, d)
	case opts.pipe:
		return pipeEngine(ctx, opts, d, os.Stdout)
	default:
		return runPanel(ctx, opts, d)
	}
}
