package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"text/tabwriter"

	"github.com/cwbudde/algo-jcrev/dsp/core"
	"github.com/cwbudde/algo-jcrev/internal/wav"
	"github.com/cwbudde/algo-jcrev/measure/ir"
)

const defaultImpulseAmplitude = 16000

func runIR(_ context.Context, a *app, args []string) error {
	fs, verbose := a.newFlagSet("ir", "[flags]")
	n := fs.Int("n", 0, "response length in samples (default 4*delay+1)")
	amp := fs.Int("amp", defaultImpulseAmplitude, "impulse amplitude")
	out := fs.String("out", "", "optional WAV file for the raw response")
	fftSize := fs.Int("fft", 0, "FFT size for the magnitude summary (0 = fit the response)")
	a.engineFlags(fs)

	if err := a.parse(fs, verbose, args); err != nil {
		return err
	}
	if *amp < 1 || *amp > math.MaxInt16 {
		return fmt.Errorf("amplitude must be in [1, %d]: %d", math.MaxInt16, *amp)
	}

	length := *n
	if length <= 0 {
		length = 4*a.cfg.Delay + 1
	}

	resp, err := a.impulseResponse(length, int16(*amp))
	if err != nil {
		return err
	}

	if *out != "" {
		f := &wav.File{SampleRate: int(a.cfg.SampleRate), Channels: 1, Samples: resp}
		if err := wav.WriteFile(*out, f); err != nil {
			return fmt.Errorf("write %s: %w", *out, err)
		}
		a.logger.Info("wrote impulse response", slog.String("file", *out))
	}

	analyzer := ir.NewAnalyzer(a.cfg.SampleRate)
	m, err := analyzer.AnalyzePCM16(resp)
	if err != nil {
		return err
	}

	h := make([]float64, len(resp))
	core.Int16ToFloat(h, resp)
	mag, err := ir.MagnitudeResponse(h, *fftSize)
	if err != nil {
		return err
	}

	return a.printIR(m, mag)
}

// impulseResponse renders an impulse of amplitude amp through an engine
// whose delay line has been filled with silence, so the warm-up transient
// does not show up in the response.
func (a *app) impulseResponse(n int, amp int16) ([]int16, error) {
	params, err := a.cfg.Params()
	if err != nil {
		return nil, err
	}
	engine, err := a.cfg.NewEngine(a.logger)
	if err != nil {
		return nil, err
	}
	defer engine.Close()

	warm := make([]int16, engine.Delay())
	if err := engine.ProcessInPlace(warm, &params); err != nil {
		return nil, err
	}

	src := make([]int16, n)
	src[0] = amp
	dst := make([]int16, n)
	if err := engine.ProcessBlock(dst, src, &params); err != nil {
		return nil, err
	}
	return dst, nil
}

func (a *app) printIR(m ir.Metrics, mag []float64) error {
	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "RT60\t%.3f s\n", m.RT60)
	fmt.Fprintf(w, "EDT\t%.3f s\n", m.EDT)
	fmt.Fprintf(w, "T20\t%.3f s\n", m.T20)
	fmt.Fprintf(w, "T30\t%.3f s\n", m.T30)
	fmt.Fprintf(w, "C50\t%.2f dB\n", m.C50)
	fmt.Fprintf(w, "C80\t%.2f dB\n", m.C80)
	fmt.Fprintf(w, "D50\t%.3f\n", m.D50)
	fmt.Fprintf(w, "D80\t%.3f\n", m.D80)
	fmt.Fprintf(w, "Center time\t%.3f s\n", m.CenterTime)
	fmt.Fprintf(w, "Echoes\t%v\n", m.Echoes)
	if m.EchoSpacing > 0 {
		fmt.Fprintf(w, "Echo spacing\t%d samples (%.1f ms)\n",
			m.EchoSpacing, 1000*float64(m.EchoSpacing)/a.cfg.SampleRate)
		fmt.Fprintf(w, "Echo decay\t%.2f dB/echo\n", m.EchoDecayDB)
	}

	lo, hi := magnitudeRangeDB(mag)
	fmt.Fprintf(w, "Magnitude\t%.2f .. %.2f dB (ripple %.2f dB)\n", lo, hi, hi-lo)

	return w.Flush()
}

// magnitudeRangeDB returns the smallest and largest bin level in dB.
func magnitudeRangeDB(mag []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range mag {
		db := core.LinearToDB(math.Max(v, 1e-12))
		lo = math.Min(lo, db)
		hi = math.Max(hi, db)
	}
	return lo, hi
}
