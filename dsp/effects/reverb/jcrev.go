package reverb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-jcrev/dsp/ring"
)

// ErrNotInitialized is returned by the processing methods of an engine that
// was never initialized or has been closed.
var ErrNotInitialized = fmt.Errorf("reverb: %w", ring.ErrNotInitialized)

var errBlockLength = errors.New("reverb: dst and src must have same length")

var (
	allPassStageNames = [numAllPasses]string{"ap0", "ap1", "ap2"}
	combStageNames    = [numCombs]string{"comb1", "comb2", "comb3"}
)

// Engine is an integer Schroeder reverberator ("JCRev") running over a single
// ring of (input, output) pairs.
//
// Three all-pass stages run in series on the input; comb0 reads the oldest
// pair of the ring and three more combs tap the ring at their own delays.
// Every stage output is attenuated by a fixed arithmetic shift of 2 bits and
// the four comb outputs are summed:
//
//	ap:    out = (int32((y - x) * g) + running) >> 2
//	comb0: out = (int32(y * g0) + running) >> 2
//	combN: out = (int32(y * gN) + sample) >> 2
//
// Gains are applied in single precision and truncated toward zero.
//
// The first Delay() calls after Init are warm-up: comb0 cannot pop yet. A
// stage whose ring read fails reuses the pair read by the stage before it in
// the same call (zero for the first stage), so during warm-up comb0 sees the
// ap2 tap. This transient is part of the output and is reproduced exactly.
//
// Engine is not safe for concurrent use.
type Engine struct {
	buf       ring.Buffer
	logger    *slog.Logger
	dryComb0  bool
	processed uint64
}

// New creates an engine whose comb0 delay is delay samples. The ring holds
// delay+1 slots.
func New(delay int, opts ...Option) (*Engine, error) {
	cfg := engineConfig{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	e := &Engine{
		logger:   cfg.logger,
		dryComb0: cfg.dryComb0,
	}
	if err := e.Init(delay); err != nil {
		return nil, err
	}
	return e, nil
}

// Init allocates the ring for a comb0 delay of delay samples. It fails while
// the engine is live; Close first.
func (e *Engine) Init(delay int) error {
	if delay <= 0 {
		return fmt.Errorf("reverb delay must be > 0: %d", delay)
	}
	if err := e.buf.Init(delay + 1); err != nil {
		return fmt.Errorf("reverb: init: %w", err)
	}
	e.processed = 0
	e.debug("init", slog.Int("capacity", delay+1))
	return nil
}

// Close releases the ring. Closing twice is a no-op; processing after Close
// returns ErrNotInitialized.
func (e *Engine) Close() {
	e.buf.Close()
	e.processed = 0
}

// Initialized reports whether the engine can process samples.
func (e *Engine) Initialized() bool {
	return e.buf.Initialized()
}

// Delay returns the comb0 delay in samples, or 0 when closed.
func (e *Engine) Delay() int {
	if c := e.buf.Cap(); c > 0 {
		return c - 1
	}
	return 0
}

// Processed returns the number of samples processed since Init or Reset.
func (e *Engine) Processed() uint64 {
	return e.processed
}

// WarmedUp reports whether the delay line has been filled, i.e. the next
// call will pop comb0 from real signal history.
func (e *Engine) WarmedUp() bool {
	return e.buf.Initialized() && e.processed >= uint64(e.Delay())
}

// Reset clears the delay line and restarts warm-up without reallocating.
func (e *Engine) Reset() {
	e.buf.Reset()
	e.processed = 0
}

// ProcessSample runs one time step of the cascade and returns the output
// truncated to 16 bits. Ring statuses are advisory and only reach the logger;
// the sole error is ErrNotInitialized, returned with a zero sample.
func (e *Engine) ProcessSample(sample int16, p *Params) (int16, error) {
	if !e.buf.Initialized() {
		return 0, ErrNotInitialized
	}

	in := int32(sample)

	var x, y int32

	running := in
	for i := range p.AllPass {
		st := &p.AllPass[i]
		x, y = e.peek(allPassStageNames[i], st.Delay, x, y)
		if st.Gain != 0 {
			running = allPass(running, x, y, st.Gain)
		}
	}

	if px, py, err := e.buf.Pop(); err == nil {
		x, y = px, py
	} else {
		e.status("comb0", err)
	}
	e.trace("comb0", x, y)

	feed := running
	if e.dryComb0 {
		feed = in
	}
	result := comb(feed, y, p.Comb0Gain)

	for i := range p.Combs {
		st := &p.Combs[i]
		x, y = e.peek(combStageNames[i], st.Delay, x, y)
		result += comb(in, y, st.Gain)
	}

	if err := e.buf.Put(in, result); err != nil {
		e.status("put", err)
	}
	e.processed++

	return int16(result), nil
}

// Process is ProcessSample with the coefficients spelled out in cascade
// order: comb0 gain, then (gain, delay) for comb1..comb3 and ap0..ap2.
func (e *Engine) Process(sample int16, gComb0 float32,
	gComb1 float32, mComb1 int,
	gComb2 float32, mComb2 int,
	gComb3 float32, mComb3 int,
	gAp0 float32, mAp0 int,
	gAp1 float32, mAp1 int,
	gAp2 float32, mAp2 int,
) (int16, error) {
	p := Params{
		Comb0Gain: gComb0,
		Combs:     [numCombs]Stage{{gComb1, mComb1}, {gComb2, mComb2}, {gComb3, mComb3}},
		AllPass:   [numAllPasses]Stage{{gAp0, mAp0}, {gAp1, mAp1}, {gAp2, mAp2}},
	}
	return e.ProcessSample(sample, &p)
}

// ProcessInPlace applies the reverb to buf in place.
func (e *Engine) ProcessInPlace(buf []int16, p *Params) error {
	return e.ProcessBlock(buf, buf, p)
}

// ProcessBlock processes src into dst. dst and src may alias.
func (e *Engine) ProcessBlock(dst, src []int16, p *Params) error {
	if len(dst) != len(src) {
		return errBlockLength
	}
	if !e.buf.Initialized() {
		return ErrNotInitialized
	}
	for i, s := range src {
		out, err := e.ProcessSample(s, p)
		if err != nil {
			return err
		}
		dst[i] = out
	}
	return nil
}

// Bind returns a block processor that runs e with a fixed copy of p.
func (e *Engine) Bind(p Params) *Bound {
	return &Bound{engine: e, params: p}
}

// Bound pairs an engine with fixed coefficients.
type Bound struct {
	engine *Engine
	params Params
}

// ProcessBlock processes src into dst with the bound coefficients.
func (b *Bound) ProcessBlock(dst, src []int16) error {
	return b.engine.ProcessBlock(dst, src, &b.params)
}

// Params returns the bound coefficients.
func (b *Bound) Params() Params { return b.params }

func allPass(running, x, y int32, g float32) int32 {
	ret := int32(float32(y-x) * g)
	return (ret + running) >> 2
}

func comb(in, y int32, g float32) int32 {
	ret := int32(float32(y) * g)
	return (ret + in) >> 2
}

// peek reads a stage tap, keeping the previous pair when the read fails.
func (e *Engine) peek(stage string, delay int, x, y int32) (int32, int32) {
	if px, py, err := e.buf.PeekBack(delay); err == nil {
		x, y = px, py
	} else {
		e.status(stage, err)
	}
	e.trace(stage, x, y)
	return x, y
}

func (e *Engine) debugEnabled() bool {
	return e.logger != nil && e.logger.Enabled(context.Background(), slog.LevelDebug)
}

func (e *Engine) trace(stage string, x, y int32) {
	if !e.debugEnabled() {
		return
	}
	e.logger.LogAttrs(context.Background(), slog.LevelDebug, "reverb stage",
		slog.String("stage", stage),
		slog.Int64("x", int64(x)),
		slog.Int64("y", int64(y)),
		slog.Int("head", e.buf.Head()),
		slog.Int("tail", e.buf.Tail()),
	)
}

func (e *Engine) status(stage string, err error) {
	if !e.debugEnabled() {
		return
	}
	e.logger.LogAttrs(context.Background(), slog.LevelDebug, "reverb ring status",
		slog.String("stage", stage),
		slog.Uint64("sample", e.processed),
		slog.String("err", err.Error()),
	)
}

func (e *Engine) debug(msg string, attrs ...slog.Attr) {
	if !e.debugEnabled() {
		return
	}
	e.logger.LogAttrs(context.Background(), slog.LevelDebug, "reverb "+msg, attrs...)
}
