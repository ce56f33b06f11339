package delay

import (
	"fmt"
	"math"
)

// Echo is a feedforward single echo: y[n] = x[n] + round(g * x[n-M]).
//
// Rounding is half to even and the sum wraps to 16 bits, matching numpy
// int16 arithmetic. With g equal to the comb0 gain it shows what the first
// echo of the reverberator should sound like, without feedback.
type Echo struct {
	line  *Line
	gain  float64
	delay int
}

// NewEcho returns an echo of delay samples at gain.
func NewEcho(gain float64, delay int) (*Echo, error) {
	if math.IsNaN(gain) || math.IsInf(gain, 0) {
		return nil, fmt.Errorf("echo gain must be finite: %f", gain)
	}
	line, err := New(delay)
	if err != nil {
		return nil, err
	}
	return &Echo{line: line, gain: gain, delay: delay}, nil
}

// Delay returns M.
func (e *Echo) Delay() int { return e.delay }

// ProcessSample returns x[n] + round(g * x[n-M]).
func (e *Echo) ProcessSample(x int16) int16 {
	tap := e.line.Read(e.delay)
	e.line.Write(x)
	return x + int16(int32(math.RoundToEven(e.gain*float64(tap))))
}

// ProcessBlock processes src into dst. dst and src may alias.
func (e *Echo) ProcessBlock(dst, src []int16) error {
	if len(dst) != len(src) {
		return fmt.Errorf("echo: dst and src must have same length: %d != %d", len(dst), len(src))
	}
	for i, s := range src {
		dst[i] = e.ProcessSample(s)
	}
	return nil
}

// Reset clears the delay line.
func (e *Echo) Reset() {
	e.line.Reset()
}

// Render runs a fresh echo over src followed by M samples of silence so the
// last echo is not cut off. The result has len(src)+M samples.
func Render(src []int16, gain float64, delay int) ([]int16, error) {
	e, err := NewEcho(gain, delay)
	if err != nil {
		return nil, err
	}

	out := make([]int16, len(src)+delay)
	copy(out, src)
	if err := e.ProcessBlock(out, out); err != nil {
		return nil, err
	}
	return out, nil
}
