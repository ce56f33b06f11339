package ir

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-jcrev/dsp/core"
)

// Errors returned by IR analysis functions.
var (
	ErrEmptyIR           = errors.New("ir: impulse response is empty")
	ErrInvalidSampleRate = errors.New("ir: sample rate must be positive")
	ErrInvalidTime       = errors.New("ir: time must be positive")
	ErrNoDecay           = errors.New("ir: insufficient decay for RT calculation")
)

// schroederFloorDB is reported where the remaining energy is exactly zero.
const schroederFloorDB = -200

// DefaultEchoThreshold is the echo detection level relative to the peak
// used by Analyze (-60 dB).
const DefaultEchoThreshold = 1e-3

// Metrics holds impulse response analysis results. Times are in seconds.
type Metrics struct {
	RT60       float64 // T30, or T20 when the response is too short
	EDT        float64 // 0 to -10 dB, extrapolated
	T20        float64 // -5 to -25 dB, extrapolated
	T30        float64 // -5 to -35 dB, extrapolated
	C50        float64 // dB
	C80        float64 // dB
	D50        float64 // 0..1
	D80        float64 // 0..1
	CenterTime float64
	PeakIndex  int

	Echoes      []int   // echo positions relative to the peak
	EchoSpacing int     // dominant echo period in samples, 0 if none
	EchoDecayDB float64 // mean level change per echo period
}

// Analyzer computes IR metrics at a fixed sample rate.
type Analyzer struct {
	SampleRate float64
}

// NewAnalyzer creates an IR analyzer with the given sample rate.
func NewAnalyzer(sampleRate float64) *Analyzer {
	return &Analyzer{SampleRate: sampleRate}
}

// Analyze computes all metrics. Everything before the absolute peak is
// ignored.
func (a *Analyzer) Analyze(ir []float64) (Metrics, error) {
	if len(ir) == 0 {
		return Metrics{}, ErrEmptyIR
	}

	if a.SampleRate <= 0 {
		return Metrics{}, ErrInvalidSampleRate
	}

	peak := findPeak(ir)
	tail := ir[peak:]
	curve := schroeder(tail)

	m := Metrics{
		PeakIndex:  peak,
		CenterTime: a.centerTime(tail),
		D50:        a.definition(tail, 50),
		D80:        a.definition(tail, 80),
		C50:        a.clarity(tail, 50),
		C80:        a.clarity(tail, 80),
		EDT:        a.reverbTime(curve, 0, -10),
		T20:        a.reverbTime(curve, -5, -25),
		T30:        a.reverbTime(curve, -5, -35),
	}

	m.RT60 = m.T30
	if m.RT60 <= 0 {
		m.RT60 = m.T20
	}

	m.Echoes = FindEchoes(tail, DefaultEchoThreshold)
	m.EchoSpacing = EchoSpacing(m.Echoes)
	m.EchoDecayDB = echoDecayDB(tail, m.Echoes)

	return m, nil
}

// AnalyzePCM16 converts a 16-bit response to [-1, 1) and analyses it.
func (a *Analyzer) AnalyzePCM16(ir []int16) (Metrics, error) {
	if len(ir) == 0 {
		return Metrics{}, ErrEmptyIR
	}

	buf := make([]float64, len(ir))
	core.Int16ToFloat(buf, ir)

	return a.Analyze(buf)
}

// SchroederIntegral returns the backward-integrated energy decay in dB,
// normalised to 0 dB at the first sample:
//
//	S(t) = 10*log10( ∫_t^∞ h²(τ) dτ / ∫_0^∞ h²(τ) dτ )
func (a *Analyzer) SchroederIntegral(ir []float64) ([]float64, error) {
	if len(ir) == 0 {
		return nil, ErrEmptyIR
	}

	return schroeder(ir), nil
}

func schroeder(ir []float64) []float64 {
	out := make([]float64, len(ir))

	var acc float64
	for i := len(ir) - 1; i >= 0; i-- {
		acc += ir[i] * ir[i]
		out[i] = acc
	}

	total := out[0]
	if total <= 0 {
		return out
	}

	for i, e := range out {
		if e <= 0 {
			out[i] = schroederFloorDB
			continue
		}
		out[i] = core.LinearPowerToDB(e / total)
	}

	return out
}

// reverbTime fits a line to the Schroeder curve between the first crossings
// of startDB and endDB and extrapolates it to -60 dB. It returns 0 when the
// curve never reaches endDB or does not decay.
func (a *Analyzer) reverbTime(curve []float64, startDB, endDB float64) float64 {
	if len(curve) == 0 || a.SampleRate <= 0 {
		return 0
	}

	first, last := -1, -1
	for i, v := range curve {
		if first < 0 && v <= startDB {
			first = i
		}
		if first >= 0 && v <= endDB {
			last = i
			break
		}
	}

	if first < 0 || last <= first {
		return 0
	}

	slope, ok := linearSlope(curve[first : last+1])
	if !ok || slope >= 0 {
		return 0
	}

	// dB/sample -> seconds to fall 60 dB.
	return -60 / (slope * a.SampleRate)
}

// linearSlope is the least-squares slope of y against its index.
func linearSlope(y []float64) (float64, bool) {
	n := float64(len(y))
	if n < 2 {
		return 0, false
	}

	var sx, sy, sxx, sxy float64
	for i, v := range y {
		x := float64(i)
		sx += x
		sy += v
		sxx += x * x
		sxy += x * v
	}

	den := n*sxx - sx*sx
	if den == 0 {
		return 0, false
	}

	return (n*sxy - sx*sy) / den, true
}

// Definition returns D(t), the fraction of energy arriving before timeMs.
func (a *Analyzer) Definition(ir []float64, timeMs float64) (float64, error) {
	if err := a.checkWindow(ir, timeMs); err != nil {
		return 0, err
	}

	return a.definition(ir, timeMs), nil
}

func (a *Analyzer) definition(ir []float64, timeMs float64) float64 {
	boundary := a.msToSamples(timeMs)
	if boundary <= 0 {
		return 0
	}
	if boundary >= len(ir) {
		return 1
	}

	early, late := energySplit(ir, boundary)
	if early+late <= 0 {
		return 0
	}

	return early / (early + late)
}

// Clarity returns C(t) in dB: early energy before timeMs over late energy.
func (a *Analyzer) Clarity(ir []float64, timeMs float64) (float64, error) {
	if err := a.checkWindow(ir, timeMs); err != nil {
		return 0, err
	}

	return a.clarity(ir, timeMs), nil
}

func (a *Analyzer) clarity(ir []float64, timeMs float64) float64 {
	boundary := a.msToSamples(timeMs)
	if boundary <= 0 {
		return math.Inf(-1)
	}
	if boundary >= len(ir) {
		return math.Inf(1)
	}

	early, late := energySplit(ir, boundary)
	switch {
	case late <= 0:
		return math.Inf(1)
	case early <= 0:
		return math.Inf(-1)
	}

	return core.LinearPowerToDB(early / late)
}

func energySplit(ir []float64, boundary int) (early, late float64) {
	for i, v := range ir {
		if i < boundary {
			early += v * v
		} else {
			late += v * v
		}
	}
	return early, late
}

func (a *Analyzer) msToSamples(ms float64) int {
	return int(math.Round(ms * 0.001 * a.SampleRate))
}

func (a *Analyzer) checkWindow(ir []float64, timeMs float64) error {
	switch {
	case len(ir) == 0:
		return ErrEmptyIR
	case a.SampleRate <= 0:
		return ErrInvalidSampleRate
	case timeMs <= 0:
		return ErrInvalidTime
	}
	return nil
}

// CenterTime returns the energy centroid in seconds:
//
//	Ts = ∫ τ·h²(τ) dτ / ∫ h²(τ) dτ
func (a *Analyzer) CenterTime(ir []float64) (float64, error) {
	if len(ir) == 0 {
		return 0, ErrEmptyIR
	}

	if a.SampleRate <= 0 {
		return 0, ErrInvalidSampleRate
	}

	return a.centerTime(ir), nil
}

func (a *Analyzer) centerTime(ir []float64) float64 {
	var num, den float64
	for i, v := range ir {
		e := v * v
		num += float64(i) * e
		den += e
	}

	if den <= 0 {
		return 0
	}

	return num / den / a.SampleRate
}

// RT60 returns T30, falling back to T20, or ErrNoDecay when neither range is
// reached.
func (a *Analyzer) RT60(ir []float64) (float64, error) {
	if len(ir) == 0 {
		return 0, ErrEmptyIR
	}

	if a.SampleRate <= 0 {
		return 0, ErrInvalidSampleRate
	}

	curve := schroeder(ir)
	if rt := a.reverbTime(curve, -5, -35); rt > 0 {
		return rt, nil
	}
	if rt := a.reverbTime(curve, -5, -25); rt > 0 {
		return rt, nil
	}

	return 0, ErrNoDecay
}

// FindImpulseStart returns the first sample within -20 dB of the peak.
func (a *Analyzer) FindImpulseStart(ir []float64) (int, error) {
	if len(ir) == 0 {
		return 0, ErrEmptyIR
	}

	threshold := 0.1 * peakAbs(ir)
	for i, v := range ir {
		if math.Abs(v) >= threshold {
			return i, nil
		}
	}

	return 0, nil
}

func findPeak(ir []float64) int {
	idx := 0
	best := 0.0
	for i, v := range ir {
		if av := math.Abs(v); av > best {
			best = av
			idx = i
		}
	}
	return idx
}

func peakAbs(ir []float64) float64 {
	return math.Abs(ir[findPeak(ir)])
}
