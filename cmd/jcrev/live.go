package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/algo-jcrev/dsp/stream"
	"github.com/cwbudde/algo-jcrev/internal/audio"
)

func runLive(ctx context.Context, a *app, args []string) error {
	fs, verbose := a.newFlagSet("live", "[flags]")
	duration := fs.Duration("duration", 0, "stop after this long (0 = until a key press or signal)")
	fs.Float64Var(&a.cfg.SampleRate, "rate", a.cfg.SampleRate, "device sample rate in Hz")
	a.engineFlags(fs)

	if err := a.parse(fs, verbose, args); err != nil {
		return err
	}

	params, err := a.cfg.Params()
	if err != nil {
		return err
	}
	engine, err := a.cfg.NewEngine(a.logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	loop, err := stream.NewLoop(engine.Bind(params), a.cfg.ProcessorOptions()...)
	if err != nil {
		return err
	}

	// One device period per DMA half.
	half := loop.Config().HalfBlock()
	dev, err := audio.OpenDuplex(int(a.cfg.SampleRate), half, func(out, in []int16) {
		_ = loop.Period(in, out)
	}, a.logger)
	if err != nil {
		return err
	}
	defer dev.Close()

	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	pressed, restore := audio.KeyPress(ctx)
	defer restore()

	if err := dev.Start(); err != nil {
		return err
	}
	a.logger.Info("live",
		slog.Float64("rate", a.cfg.SampleRate),
		slog.Int("period", half),
		slog.Duration("budget", loop.Budget()),
		slog.String("preset", a.cfg.Preset),
	)
	fmt.Fprintln(a.stderr, "press any key to stop")

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return a.reportLive(loop)
		case <-pressed:
			return a.reportLive(loop)
		case <-ticker.C:
			st := loop.Stats()
			a.logger.Debug("live stats",
				slog.Uint64("callbacks", st.Callbacks),
				slog.Uint64("overruns", st.Overruns),
				slog.Duration("max_elapsed", st.MaxElapsed),
			)
		}
	}
}

func (a *app) reportLive(loop *stream.Loop) error {
	st := loop.Stats()
	a.logger.Info("stopped",
		slog.Uint64("callbacks", st.Callbacks),
		slog.Uint64("samples", st.Samples),
		slog.Uint64("overruns", st.Overruns),
		slog.Uint64("errors", st.Errors),
		slog.Duration("max_elapsed", st.MaxElapsed),
		slog.Duration("budget", st.Budget),
	)
	if st.Errors > 0 {
		return fmt.Errorf("%d callbacks failed", st.Errors)
	}
	return nil
}
