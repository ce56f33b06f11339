package audio

import (
	"fmt"
	"log/slog"

	"github.com/gen2brain/malgo"

	"github.com/cwbudde/algo-jcrev/dsp/core"
	"github.com/cwbudde/algo-jcrev/internal/wav"
)

// PeriodFunc processes one device period. in and out have the same length
// and are only valid for the duration of the call.
type PeriodFunc func(out, in []int16)

// Duplex is a full-duplex mono PCM16 device: every period of captured
// samples is handed to a PeriodFunc together with the playback buffer to
// fill.
type Duplex struct {
	ctx *malgo.AllocatedContext
	dev *malgo.Device

	in, out []int16
}

// OpenDuplex opens the default capture and playback devices at sampleRate
// with a period of periodFrames samples.
func OpenDuplex(sampleRate, periodFrames int, fn PeriodFunc, logger *slog.Logger) (*Duplex, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("audio sample rate must be > 0: %d", sampleRate)
	}
	if periodFrames <= 0 {
		return nil, fmt.Errorf("audio period must be > 0: %d", periodFrames)
	}
	if fn == nil {
		return nil, fmt.Errorf("audio: period function must not be nil")
	}

	var logProc malgo.LogProc
	if logger != nil {
		logProc = func(msg string) {
			logger.Debug("miniaudio", slog.String("msg", msg))
		}
	}

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, logProc)
	if err != nil {
		return nil, fmt.Errorf("audio: init context: %w", err)
	}

	d := &Duplex{
		ctx: mctx,
		in:  make([]int16, 0, periodFrames),
		out: make([]int16, periodFrames),
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Duplex)
	cfg.SampleRate = uint32(sampleRate)
	cfg.PeriodSizeInFrames = uint32(periodFrames)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = 1
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = 1
	cfg.Alsa.NoMMap = 1

	dev, err := malgo.InitDevice(mctx.Context, cfg, malgo.DeviceCallbacks{
		Data: func(output, input []byte, frames uint32) {
			d.in = wav.Decode(d.in, input)
			d.out = core.EnsureLen16(d.out, len(d.in))
			out := d.out

			fn(out, d.in)

			n := samplesToBytes(output, out)
			clear(output[2*n:])
		},
	})
	if err != nil {
		_ = mctx.Uninit()
		mctx.Free()
		return nil, fmt.Errorf("audio: init duplex device: %w", err)
	}
	d.dev = dev

	return d, nil
}

// Start begins streaming.
func (d *Duplex) Start() error {
	if err := d.dev.Start(); err != nil {
		return fmt.Errorf("audio: start device: %w", err)
	}
	return nil
}

// Close stops the device and releases the context.
func (d *Duplex) Close() error {
	var err error
	if d.dev != nil {
		if serr := d.dev.Stop(); serr != nil {
			err = fmt.Errorf("audio: stop device: %w", serr)
		}
		d.dev.Uninit()
		d.dev = nil
	}
	if d.ctx != nil {
		_ = d.ctx.Uninit()
		d.ctx.Free()
		d.ctx = nil
	}
	return err
}
