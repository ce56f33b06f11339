package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine16 generates a deterministic 16-bit sine wave.
func DeterministicSine16(freqHz, sampleRate float64, amplitude int16, length int) []int16 {
	out := make([]int16, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = int16(math.Round(float64(amplitude) * math.Sin(step*float64(i))))
	}
	return out
}

// DeterministicNoise16 generates white 16-bit noise in [-amplitude, amplitude]
// with a fixed seed for reproducibility.
func DeterministicNoise16(seed int64, amplitude int16, length int) []int16 {
	out := make([]int16, length)
	rng := rand.New(rand.NewSource(seed))
	span := 2*int(amplitude) + 1
	for i := range out {
		out[i] = int16(rng.Intn(span) - int(amplitude))
	}
	return out
}

// Impulse16 generates an impulse of the given amplitude at pos.
func Impulse16(length, pos int, amplitude int16) []int16 {
	out := make([]int16, length)
	if pos >= 0 && pos < length {
		out[pos] = amplitude
	}
	return out
}

// Silence16 returns length zero samples.
func Silence16(length int) []int16 {
	return make([]int16, length)
}

// DC16 generates a constant-valued signal.
func DC16(value int16, length int) []int16 {
	out := make([]int16, length)
	for i := range out {
		out[i] = value
	}
	return out
}
