package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/algo-jcrev/dsp/core"
	"github.com/cwbudde/algo-jcrev/dsp/delay"
	"github.com/cwbudde/algo-jcrev/dsp/stream"
	"github.com/cwbudde/algo-jcrev/internal/audio"
	"github.com/cwbudde/algo-jcrev/internal/wav"
)

const defaultEchoGain = 0.697

func runRender(ctx context.Context, a *app, args []string) error {
	fs, verbose := a.newFlagSet("render", "-in <file.wav> -out <file.wav> [flags]")
	in := fs.String("in", "", "input WAV file (16-bit PCM)")
	out := fs.String("out", "", "output WAV file")
	tail := fs.Duration("tail", 0, "silence appended to the input so the reverb can ring out")
	play := fs.Bool("play", false, "play the result after writing it")
	a.engineFlags(fs)

	if err := a.parse(fs, verbose, args); err != nil {
		return err
	}
	if err := a.required(fs, "in", *in); err != nil {
		return err
	}
	if err := a.required(fs, "out", *out); err != nil {
		return err
	}

	src, rate, err := a.readMono(*in)
	if err != nil {
		return err
	}
	src = append(src, make([]int16, tailSamples(*tail, rate))...)

	params, err := a.cfg.Params()
	if err != nil {
		return err
	}
	engine, err := a.cfg.NewEngine(a.logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	loop, err := stream.NewLoop(engine.Bind(params),
		core.WithSampleRate(float64(rate)),
		core.WithBlockSize(a.cfg.BlockSize),
	)
	if err != nil {
		return err
	}

	dst := make([]int16, len(src))
	if err := loop.Simulate(dst, src); err != nil {
		return err
	}

	st := loop.Stats()
	a.logger.Info("rendered",
		slog.String("preset", a.cfg.Preset),
		slog.Int("delay", engine.Delay()),
		slog.Bool("dry_comb0", a.cfg.DryComb0),
		slog.Int("samples", len(dst)),
		slog.Bool("warmed_up", engine.WarmedUp()),
		slog.Uint64("callbacks", st.Callbacks),
	)
	a.logger.Debug("callback timing",
		slog.Duration("budget", st.Budget),
		slog.Duration("max_elapsed", st.MaxElapsed),
		slog.Uint64("overruns", st.Overruns),
	)

	return a.writeAndPlay(ctx, *out, dst, rate, *play)
}

func runDelay(ctx context.Context, a *app, args []string) error {
	fs, verbose := a.newFlagSet("delay", "-in <file.wav> -out <file.wav> [flags]")
	in := fs.String("in", "", "input WAV file (16-bit PCM)")
	out := fs.String("out", "", "output WAV file")
	gain := fs.Float64("gain", defaultEchoGain, "echo gain")
	m := fs.Int("delay", a.cfg.Delay, "echo delay in samples")
	play := fs.Bool("play", false, "play the result after writing it")

	if err := a.parse(fs, verbose, args); err != nil {
		return err
	}
	if err := a.required(fs, "in", *in); err != nil {
		return err
	}
	if err := a.required(fs, "out", *out); err != nil {
		return err
	}

	src, rate, err := a.readMono(*in)
	if err != nil {
		return err
	}

	dst, err := delay.Render(src, *gain, *m)
	if err != nil {
		return err
	}

	a.logger.Info("rendered echo",
		slog.Float64("gain", *gain),
		slog.Int("delay", *m),
		slog.Int("samples", len(dst)),
	)

	return a.writeAndPlay(ctx, *out, dst, rate, *play)
}

func runPlay(ctx context.Context, a *app, args []string) error {
	fs, verbose := a.newFlagSet("play", "-in <file.wav>")
	in := fs.String("in", "", "WAV file to play")

	if err := a.parse(fs, verbose, args); err != nil {
		return err
	}
	if err := a.required(fs, "in", *in); err != nil {
		return err
	}

	src, rate, err := a.readMono(*in)
	if err != nil {
		return err
	}
	a.logger.Info("playing", slog.String("file", *in), slog.Int("samples", len(src)))
	return audio.Play(ctx, src, rate)
}

// readMono loads path and downmixes it to one channel.
func (a *app) readMono(path string) ([]int16, int, error) {
	f, err := wav.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", path, err)
	}
	if f.Channels > 1 {
		a.logger.Warn("downmixing to mono", slog.Int("channels", f.Channels))
	}
	if f.SampleRate != int(a.cfg.SampleRate) {
		a.logger.Warn("sample rate differs from the tuned rate; delays are in samples",
			slog.Int("file_rate", f.SampleRate),
			slog.Float64("tuned_rate", a.cfg.SampleRate),
		)
	}
	a.logger.Debug("read input",
		slog.String("file", path),
		slog.Int("rate", f.SampleRate),
		slog.Duration("duration", f.Duration()),
	)
	return f.Mono(), f.SampleRate, nil
}

func (a *app) writeAndPlay(ctx context.Context, path string, samples []int16, rate int, play bool) error {
	err := wav.WriteFile(path, &wav.File{SampleRate: rate, Channels: 1, Samples: samples})
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(a.stdout, "wrote %s (%d samples)\n", path, len(samples))

	if !play {
		return nil
	}
	return audio.Play(ctx, samples, rate)
}

func tailSamples(d time.Duration, rate int) int {
	if d <= 0 {
		return 0
	}
	return int(d.Seconds() * float64(rate))
}
