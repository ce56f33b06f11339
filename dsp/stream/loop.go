package stream

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-jcrev/dsp/core"
)

// Processor turns one period of input samples into output samples.
// reverb.Bound satisfies it.
type Processor interface {
	ProcessBlock(dst, src []int16) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(dst, src []int16) error

// ProcessBlock calls f(dst, src).
func (f ProcessorFunc) ProcessBlock(dst, src []int16) error {
	return f(dst, src)
}

var errNilProcessor = errors.New("stream: processor must not be nil")

// Stats is a snapshot of callback timing.
type Stats struct {
	Callbacks  uint64
	Overruns   uint64
	Errors     uint64
	Samples    uint64
	MaxElapsed time.Duration
	Budget     time.Duration
}

// Loop routes half blocks through a Processor and accounts for their timing.
//
// The callbacks must be driven from a single goroutine; Stats may be read
// concurrently.
type Loop struct {
	proc   Processor
	cfg    core.ProcessorConfig
	half   int
	budget time.Duration
	now    func() time.Time

	callbacks  atomic.Uint64
	overruns   atomic.Uint64
	errs       atomic.Uint64
	samples    atomic.Uint64
	maxElapsed atomic.Int64
}

// NewLoop creates a loop for proc. The block size must be even and at
// least 2.
func NewLoop(proc Processor, opts ...core.ProcessorOption) (*Loop, error) {
	if proc == nil {
		return nil, errNilProcessor
	}

	cfg := core.ApplyProcessorOptions(opts...)
	if cfg.BlockSize < 2 || cfg.BlockSize%2 != 0 {
		return nil, fmt.Errorf("stream block size must be even and >= 2: %d", cfg.BlockSize)
	}

	half := cfg.HalfBlock()

	return &Loop{
		proc:   proc,
		cfg:    cfg,
		half:   half,
		budget: periodDuration(half, cfg.SampleRate),
		now:    time.Now,
	}, nil
}

// Config returns the loop configuration.
func (l *Loop) Config() core.ProcessorConfig {
	return l.cfg
}

// Budget returns the time available to process one half block.
func (l *Loop) Budget() time.Duration {
	return l.budget
}

// HalfTransfer processes in[:BlockSize/2] into out[:BlockSize/2] and then
// clears that half of in.
func (l *Loop) HalfTransfer(in, out []int16) error {
	if err := l.checkBlock(in, out); err != nil {
		return err
	}
	return l.transfer(in[:l.half], out[:l.half])
}

// TransferComplete processes the second half of the block and then clears
// that half of in.
func (l *Loop) TransferComplete(in, out []int16) error {
	if err := l.checkBlock(in, out); err != nil {
		return err
	}
	return l.transfer(in[l.half:], out[l.half:])
}

// Period processes one device period of arbitrary length. The deadline is
// the period's own duration at the configured sample rate.
func (l *Loop) Period(in, out []int16) error {
	if len(in) != len(out) {
		return fmt.Errorf("stream: period length mismatch: in=%d out=%d", len(in), len(out))
	}
	return l.run(in, out, periodDuration(len(in), l.cfg.SampleRate))
}

// Simulate feeds src through a circular block pair exactly like the device
// DMA would, alternating HalfTransfer and TransferComplete, and writes the
// processed samples to dst. A trailing partial half block is zero padded.
func (l *Loop) Simulate(dst, src []int16) error {
	if len(dst) != len(src) {
		return fmt.Errorf("stream: dst and src must have same length: %d != %d", len(dst), len(src))
	}

	in := make([]int16, l.cfg.BlockSize)
	out := make([]int16, l.cfg.BlockSize)

	for pos, second := 0, false; pos < len(src); pos, second = pos+l.half, !second {
		off := 0
		if second {
			off = l.half
		}

		n := copy(in[off:off+l.half], src[pos:])

		var err error
		if second {
			err = l.TransferComplete(in, out)
		} else {
			err = l.HalfTransfer(in, out)
		}
		if err != nil {
			return err
		}

		copy(dst[pos:pos+n], out[off:off+n])
	}

	return nil
}

// Stats returns a snapshot of the callback counters.
func (l *Loop) Stats() Stats {
	return Stats{
		Callbacks:  l.callbacks.Load(),
		Overruns:   l.overruns.Load(),
		Errors:     l.errs.Load(),
		Samples:    l.samples.Load(),
		MaxElapsed: time.Duration(l.maxElapsed.Load()),
		Budget:     l.budget,
	}
}

// ResetStats clears the counters.
func (l *Loop) ResetStats() {
	l.callbacks.Store(0)
	l.overruns.Store(0)
	l.errs.Store(0)
	l.samples.Store(0)
	l.maxElapsed.Store(0)
}

func (l *Loop) checkBlock(in, out []int16) error {
	if len(in) != l.cfg.BlockSize || len(out) != l.cfg.BlockSize {
		return fmt.Errorf("stream: block length must be %d: in=%d out=%d",
			l.cfg.BlockSize, len(in), len(out))
	}
	return nil
}

func (l *Loop) transfer(in, out []int16) error {
	err := l.run(in, out, l.budget)
	core.Zero16(in)
	return err
}

func (l *Loop) run(in, out []int16, deadline time.Duration) error {
	start := l.now()
	err := l.proc.ProcessBlock(out, in)
	elapsed := l.now().Sub(start)

	l.callbacks.Add(1)
	l.samples.Add(uint64(len(in)))
	if err != nil {
		l.errs.Add(1)
	}
	if elapsed > deadline {
		l.overruns.Add(1)
	}
	for {
		prev := l.maxElapsed.Load()
		if int64(elapsed) <= prev || l.maxElapsed.CompareAndSwap(prev, int64(elapsed)) {
			break
		}
	}

	if err != nil {
		return fmt.Errorf("stream: process: %w", err)
	}
	return nil
}

func periodDuration(samples int, sampleRate float64) time.Duration {
	return time.Duration(math.Round(float64(samples) * float64(time.Second) / sampleRate))
}
