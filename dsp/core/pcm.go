package core

import "github.com/cwbudde/algo-vecmath"

// pcm16Scale maps the int16 range onto [-1, 1).
const pcm16Scale = 1.0 / 32768

// Int16ToFloat converts PCM16 samples to float64 in [-1, 1) and returns the
// number of converted samples (the shorter of the two lengths).
func Int16ToFloat(dst []float64, src []int16) int {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		dst[i] = float64(src[i])
	}
	vecmath.ScaleBlockInPlace(dst[:n], pcm16Scale)
	return n
}

// FloatToInt16 converts float samples in [-1, 1] to PCM16, rounding to the
// nearest step and saturating out-of-range values. It returns the number of
// converted samples.
func FloatToInt16(dst []int16, src []float64) int {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		dst[i] = SaturateInt16(src[i] * 32768)
	}
	return n
}

// SaturateInt16 rounds v half away from zero and clamps it to the int16 range.
func SaturateInt16(v float64) int16 {
	v = Clamp(v, -32768, 32767)
	if v < 0 {
		return int16(v - 0.5)
	}
	return int16(v + 0.5)
}

// EnsureLen16 returns a slice of length n, reusing the capacity of buf
// when it suffices.
func EnsureLen16(buf []int16, n int) []int16 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]int16, n)
}

// Zero16 clears a PCM16 buffer.
func Zero16(buf []int16) {
	for i := range buf {
		buf[i] = 0
	}
}
