package audio

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-jcrev/internal/wav"
)

// oto allows a single context per process.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoRate int
	otoErr  error
)

func otoContext(sampleRate int) (*oto.Context, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   50 * time.Millisecond,
		})
		if err != nil {
			otoErr = fmt.Errorf("audio: oto context: %w", err)
			return
		}
		<-ready
		otoCtx, otoRate = ctx, sampleRate
	})
	if otoErr != nil {
		return nil, otoErr
	}
	if otoRate != sampleRate {
		return nil, fmt.Errorf("audio: output already opened at %d Hz, cannot play %d Hz", otoRate, sampleRate)
	}
	return otoCtx, nil
}

// Play plays mono PCM16 samples and blocks until playback finishes or ctx
// is cancelled.
func Play(ctx context.Context, samples []int16, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("audio sample rate must be > 0: %d", sampleRate)
	}

	oc, err := otoContext(sampleRate)
	if err != nil {
		return err
	}

	p := oc.NewPlayer(bytes.NewReader(wav.Encode(samples)))
	defer p.Close()

	p.Play()

	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()

	for p.IsPlaying() {
		select {
		case <-ctx.Done():
			p.Pause()
			return ctx.Err()
		case <-tick.C:
		}
	}

	if err := p.Err(); err != nil {
		return fmt.Errorf("audio: playback: %w", err)
	}
	return nil
}
