package ir

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-jcrev/dsp/effects/reverb"
)

const testRate = 16000.0

// exponentialDecay returns exp(-ln(1000) t / rt60), which is -60 dB at rt60.
func exponentialDecay(rt60, seconds float64) []float64 {
	out := make([]float64, int(testRate*seconds))
	k := math.Log(1000) / rt60
	for i := range out {
		out[i] = math.Exp(-k * float64(i) / testRate)
	}
	return out
}

// twoTaps returns a unit impulse followed by a tap of amp at ms.
func twoTaps(ms, amp float64, length int) []float64 {
	out := make([]float64, length)
	out[0] = 1
	out[int(ms*0.001*testRate)] = amp
	return out
}

// engineImpulse renders the production engine's response to one impulse
// of amp after warm-up.
func engineImpulse(t testing.TB, length int, amp int16) []int16 {
	t.Helper()

	e, err := reverb.New(reverb.DefaultDelay)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	p := reverb.ProductionParams()
	warm := make([]int16, reverb.DefaultDelay)
	if err := e.ProcessInPlace(warm, &p); err != nil {
		t.Fatal(err)
	}

	out := make([]int16, length)
	out[0] = amp
	if err := e.ProcessInPlace(out, &p); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestAnalyzeExponentialDecay(t *testing.T) {
	const rt60 = 0.8
	a := NewAnalyzer(testRate)

	m, err := a.Analyze(exponentialDecay(rt60, 3))
	if err != nil {
		t.Fatal(err)
	}

	for name, got := range map[string]float64{"RT60": m.RT60, "EDT": m.EDT, "T20": m.T20, "T30": m.T30} {
		if math.Abs(got-rt60) > 0.05*rt60 {
			t.Errorf("%s = %.4f, want %.4f (±5%%)", name, got, rt60)
		}
	}
	if m.PeakIndex != 0 {
		t.Errorf("PeakIndex = %d, want 0", m.PeakIndex)
	}
	if m.D80 < m.D50 || m.D50 <= 0 || m.D80 > 1 {
		t.Errorf("D50 = %.3f, D80 = %.3f, want 0 < D50 <= D80 <= 1", m.D50, m.D80)
	}
	if m.CenterTime <= 0 || m.CenterTime > rt60 {
		t.Errorf("CenterTime = %.3f, want in (0, %.1f]", m.CenterTime, rt60)
	}
	if m.EchoSpacing != 0 {
		t.Errorf("EchoSpacing = %d, want 0 for smooth decay", m.EchoSpacing)
	}

	// C(t) = 10*log10(D/(1-D)).
	if want := 10 * math.Log10(m.D50/(1-m.D50)); math.Abs(m.C50-want) > 0.01 {
		t.Errorf("C50 = %.3f, want %.3f from D50", m.C50, want)
	}
}

func TestAnalyzeIgnoresPreDelay(t *testing.T) {
	ir := append(make([]float64, 100), exponentialDecay(0.5, 2)...)

	m, err := NewAnalyzer(testRate).Analyze(ir)
	if err != nil {
		t.Fatal(err)
	}
	if m.PeakIndex != 100 {
		t.Fatalf("PeakIndex = %d, want 100", m.PeakIndex)
	}
	if math.Abs(m.RT60-0.5) > 0.025 {
		t.Fatalf("RT60 = %.3f, want 0.5", m.RT60)
	}
}

func TestAnalyzeValidation(t *testing.T) {
	if _, err := NewAnalyzer(testRate).Analyze(nil); !errors.Is(err, ErrEmptyIR) {
		t.Errorf("Analyze(nil) = %v, want ErrEmptyIR", err)
	}
	for _, sr := range []float64{0, -1} {
		if _, err := NewAnalyzer(sr).Analyze([]float64{1}); !errors.Is(err, ErrInvalidSampleRate) {
			t.Errorf("Analyze(sr=%v) = %v, want ErrInvalidSampleRate", sr, err)
		}
	}
	if _, err := NewAnalyzer(testRate).AnalyzePCM16(nil); !errors.Is(err, ErrEmptyIR) {
		t.Errorf("AnalyzePCM16(nil) = %v, want ErrEmptyIR", err)
	}
}

func TestSchroederIntegral(t *testing.T) {
	a := NewAnalyzer(testRate)

	curve, err := a.SchroederIntegral(exponentialDecay(1, 2))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(curve[0]) > 1e-9 {
		t.Fatalf("curve[0] = %g dB, want 0", curve[0])
	}
	for i := 1; i < len(curve); i++ {
		if curve[i] > curve[i-1]+1e-9 {
			t.Fatalf("curve rises at %d: %g > %g", i, curve[i], curve[i-1])
		}
	}

	// Halfway to RT60 the energy is 30 dB down.
	if got := curve[int(0.5*testRate)]; math.Abs(got+30) > 0.1 {
		t.Fatalf("curve at 0.5 s = %.2f dB, want about -30", got)
	}

	floor, _ := a.SchroederIntegral([]float64{1, 0, 0})
	if floor[1] != schroederFloorDB {
		t.Fatalf("curve after last energy = %g, want %d", floor[1], schroederFloorDB)
	}

	if _, err := a.SchroederIntegral(nil); !errors.Is(err, ErrEmptyIR) {
		t.Fatalf("SchroederIntegral(nil) = %v, want ErrEmptyIR", err)
	}
}

func TestRT60NoDecay(t *testing.T) {
	a := NewAnalyzer(testRate)
	for _, ir := range [][]float64{{1}, {1, 0.5}} {
		if _, err := a.RT60(ir); !errors.Is(err, ErrNoDecay) {
			t.Errorf("RT60(%v) = %v, want ErrNoDecay", ir, err)
		}
	}
}

func TestDefinitionAndClarity(t *testing.T) {
	a := NewAnalyzer(testRate)

	tests := []struct {
		name      string
		ir        []float64
		timeMs    float64
		wantD     float64
		wantC     float64
		tolerance float64
	}{
		{name: "equal taps", ir: twoTaps(100, 1, 3200), timeMs: 80, wantD: 0.5, wantC: 0, tolerance: 1e-9},
		{name: "weak reflection", ir: twoTaps(100, 0.1, 3200), timeMs: 80, wantD: 1 / 1.01, wantC: 20, tolerance: 1e-9},
		{name: "boundary after end", ir: twoTaps(5, 1, 160), timeMs: 50, wantD: 1, wantC: math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := a.Definition(tt.ir, tt.timeMs)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(d-tt.wantD) > tt.tolerance {
				t.Errorf("Definition = %v, want %v", d, tt.wantD)
			}

			c, err := a.Clarity(tt.ir, tt.timeMs)
			if err != nil {
				t.Fatal(err)
			}
			if math.IsInf(tt.wantC, 0) {
				if c != tt.wantC {
					t.Errorf("Clarity = %v, want %v", c, tt.wantC)
				}
			} else if math.Abs(c-tt.wantC) > 1e-9 {
				t.Errorf("Clarity = %v, want %v", c, tt.wantC)
			}
		})
	}

	if _, err := a.Definition([]float64{1}, 0); !errors.Is(err, ErrInvalidTime) {
		t.Errorf("Definition(t=0) = %v, want ErrInvalidTime", err)
	}
	if _, err := a.Clarity(nil, 80); !errors.Is(err, ErrEmptyIR) {
		t.Errorf("Clarity(nil) = %v, want ErrEmptyIR", err)
	}
}

func TestCenterTime(t *testing.T) {
	a := NewAnalyzer(testRate)

	ct, err := a.CenterTime(twoTaps(100, 1, 3200))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(ct-0.05) > 1e-9 {
		t.Fatalf("CenterTime = %v, want 0.05", ct)
	}

	if _, err := NewAnalyzer(0).CenterTime([]float64{1}); !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("CenterTime(sr=0) = %v, want ErrInvalidSampleRate", err)
	}
}

func TestFindImpulseStart(t *testing.T) {
	a := NewAnalyzer(testRate)

	ir := make([]float64, 4000)
	for i := 0; i < 2000; i++ {
		ir[i] = 0.001 * float64(i%2*2-1)
	}
	ir[2000] = 1
	ir[2001] = 0.5

	idx, err := a.FindImpulseStart(ir)
	if err != nil {
		t.Fatal(err)
	}
	if idx != 2000 {
		t.Fatalf("FindImpulseStart = %d, want 2000", idx)
	}

	if _, err := a.FindImpulseStart(nil); !errors.Is(err, ErrEmptyIR) {
		t.Fatalf("FindImpulseStart(nil) = %v, want ErrEmptyIR", err)
	}
}

func TestEngineImpulseResponse(t *testing.T) {
	const m = reverb.DefaultDelay

	resp := engineImpulse(t, 4*m+1, 16000)

	metrics, err := NewAnalyzer(reverb.DefaultSampleRate).AnalyzePCM16(resp)
	if err != nil {
		t.Fatal(err)
	}

	want := []int{0, m, 2 * m, 3 * m}
	if len(metrics.Echoes) != len(want) {
		t.Fatalf("Echoes = %v, want %v", metrics.Echoes, want)
	}
	for i := range want {
		if metrics.Echoes[i] != want[i] {
			t.Fatalf("Echoes = %v, want %v", metrics.Echoes, want)
		}
	}
	if metrics.EchoSpacing != m {
		t.Fatalf("EchoSpacing = %d, want %d", metrics.EchoSpacing, m)
	}

	// 16000 -> 84 over three periods.
	wantDB := 20 * math.Log10(84.0/16000) / 3
	if math.Abs(metrics.EchoDecayDB-wantDB) > 1e-9 {
		t.Fatalf("EchoDecayDB = %.4f, want %.4f", metrics.EchoDecayDB, wantDB)
	}
}
