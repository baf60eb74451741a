// Command synthplay plays a YAML synth patch live or renders it to WAV.
//
// Usage:
//
//	synthplay [flags]
//
// Without -patch it plays a built-in arpeggio.
//
// Examples:
//
//	synthplay -seconds 10
//	synthplay -patch lead.yaml -watch
//	synthplay -patch lead.yaml -out lead.wav -seconds 30
//	synthplay -backend pa            (needs -tags portaudio)
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/cwbudde/algo-synth/audio/wavfile"
	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/dynamics"
	"github.com/cwbudde/algo-synth/engine"
	"github.com/cwbudde/algo-synth/meter"
)

// logger is the package-wide structured logger. Usable before initLogger.
var logger = slog.Default()

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

type options struct {
	patch   string
	out     string
	backend string
	seconds float64
	buffer  int
	watch   bool
	verbose bool
}

func main() {
	var opts options

	flag.StringVar(&opts.patch, "patch", "", "YAML patch file (default: built-in patch)")
	flag.StringVar(&opts.out, "out", "", "render to this WAV file instead of playing")
	flag.StringVar(&opts.backend, "backend", "oto", "audio backend: "+strings.Join(backendNames(), ", "))
	flag.Float64Var(&opts.seconds, "seconds", 8, "duration in seconds; 0 plays until interrupted")
	flag.IntVar(&opts.buffer, "buffer", 1024, "device buffer size in frames")
	flag.BoolVar(&opts.watch, "watch", false, "reload the patch file when it changes")
	flag.BoolVar(&opts.verbose, "v", false, "debug logging")
	flag.Parse()

	initLogger(opts.verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "synthplay: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	p := DefaultPatch()
	if opts.patch != "" {
		var err error
		if p, err = LoadPatch(opts.patch); err != nil {
			return err
		}
	}

	g, err := Build(p)
	if err != nil {
		return err
	}

	peak := meter.NewPeak(int(p.SampleRate/10), nil)

	eng, err := engine.New(g.Channel,
		engine.WithConfig(core.ProcessorConfig{SampleRate: p.SampleRate, BlockSize: p.BlockSize}),
		engine.WithObserver(peak),
	)
	if err != nil {
		return err
	}

	if err := eng.ControlChange("engine.gain", p.Gain); err != nil {
		return err
	}

	seq := NewSequencer(p.Sequence, p.Loop)
	src := newClockedSource(eng, seq, p.StepSeconds(), func(err error) {
		logger.Warn("note dropped", "err", err)
	})

	logger.Info("patch loaded",
		"voices", p.Voices,
		"shape", p.Shape,
		"dynamics", p.Dynamics.Preset,
		"sampleRate", p.SampleRate,
		"steps", len(p.Sequence),
	)

	if opts.out != "" {
		return render(opts, src, peak, g.Dyno)
	}

	backend, ok := backends[opts.backend]
	if !ok {
		return fmt.Errorf("unknown backend %q (have %s)", opts.backend, strings.Join(backendNames(), ", "))
	}

	if opts.seconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(opts.seconds*float64(time.Second)))
		defer cancel()
	}

	if opts.watch && opts.patch != "" {
		go func() {
			if err := watchPatch(ctx, opts.patch, eng, p); err != nil {
				logger.Error("watch failed", "err", err)
			}
		}()
	}

	go reportLevels(ctx, peak, eng)

	err = backend(ctx, src, opts.buffer)
	eng.Stop()

	logger.Info("stopped", "frames", eng.Frames())

	return err
}

func render(opts options, src *clockedSource, peak *meter.Peak, dyno *dynamics.Dyno) error {
	if opts.seconds <= 0 {
		return fmt.Errorf("-out needs a positive -seconds, got %g", opts.seconds)
	}

	frames := int(opts.seconds * src.SampleRate())

	start := time.Now()

	n, err := wavfile.WriteFile(opts.out, src, frames)
	if err != nil {
		return err
	}

	logger.Info("rendered",
		"path", opts.out,
		"frames", n,
		"elapsed", time.Since(start).Round(time.Millisecond),
		"peak", fmt.Sprintf("%.1f dBFS", core.LinearToDB(peak.Levels().Max())),
		"gainReduction", fmt.Sprintf("%.1f dB", dyno.GetMetrics().GainReductionDB()),
	)

	return nil
}

func reportLevels(ctx context.Context, peak *meter.Peak, eng *engine.Engine) {
	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			l := peak.Levels()
			logger.Debug("levels",
				"left", fmt.Sprintf("%.3f", l.Left),
				"right", fmt.Sprintf("%.3f", l.Right),
				"pending", eng.Pending(),
			)
		}
	}
}
