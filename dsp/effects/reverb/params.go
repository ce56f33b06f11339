package reverb

import (
	"fmt"
	"math"
)

const (
	// DefaultDelay is the comb0 delay of the firmware configuration
	// (capacity 5802 at 16 kHz, about 363 ms).
	DefaultDelay = 5801

	// DefaultSampleRate is the rate the tuning below was chosen for.
	DefaultSampleRate = 16000

	productionComb0Gain = 0.697

	jcrevComb1Gain   = 0.715
	jcrevComb2Gain   = 0.733
	jcrevComb3Gain   = 0.742
	jcrevAllPassGain = 0.7
)

var (
	defaultCombDelays    = [numCombs]int{5399, 4999, 4799}
	defaultAllPassDelays = [numAllPasses]int{1051, 337, 113}
)

const (
	numCombs     = 3
	numAllPasses = 3
)

// Stage is one explicit filter stage: a feedback gain and a delay in
// samples measured back from the most recent write.
//
// A stage with Gain == 0 is disabled. Disabled all-pass stages pass the
// running sample through unchanged; disabled combs still add (sample >> 2).
type Stage struct {
	Gain  float32
	Delay int
}

// Params carries the per-call coefficients of the cascade. The engine does
// not store them; the same value may drive several engines.
//
// The comb0 delay is implicit: it equals the engine delay passed to New.
type Params struct {
	Comb0Gain float32
	Combs     [numCombs]Stage
	AllPass   [numAllPasses]Stage
}

// ProductionParams returns the coefficient set the device ships with: a single
// comb0 echo at 0.697 and every other stage disabled but keeping its delay.
func ProductionParams() Params {
	p := Params{Comb0Gain: productionComb0Gain}
	for i := range p.Combs {
		p.Combs[i].Delay = defaultCombDelays[i]
	}
	for i := range p.AllPass {
		p.AllPass[i].Delay = defaultAllPassDelays[i]
	}
	return p
}

// JCRevParams returns the full four-comb, three-all-pass tuning.
func JCRevParams() Params {
	p := ProductionParams()
	p.Combs[0].Gain = jcrevComb1Gain
	p.Combs[1].Gain = jcrevComb2Gain
	p.Combs[2].Gain = jcrevComb3Gain
	for i := range p.AllPass {
		p.AllPass[i].Gain = jcrevAllPassGain
	}
	return p
}

// Validate checks that every gain is finite and every delay can be resolved
// by a ring of the given capacity.
//
// ProcessSample does not call Validate: an out-of-range delay there is an
// advisory status and the stage reuses the previous pair.
func (p *Params) Validate(capacity int) error {
	if err := validateGain("comb0", p.Comb0Gain); err != nil {
		return err
	}
	for i, st := range p.Combs {
		if err := validateStage(fmt.Sprintf("comb%d", i+1), st, capacity); err != nil {
			return err
		}
	}
	for i, st := range p.AllPass {
		if err := validateStage(fmt.Sprintf("ap%d", i), st, capacity); err != nil {
			return err
		}
	}
	return nil
}

func validateStage(name string, st Stage, capacity int) error {
	if err := validateGain(name, st.Gain); err != nil {
		return err
	}
	if st.Delay < 0 || st.Delay > capacity {
		return fmt.Errorf("reverb %s delay must be in [0, %d]: %d", name, capacity, st.Delay)
	}
	return nil
}

func validateGain(name string, g float32) error {
	v := float64(g)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("reverb %s gain must be finite: %f", name, v)
	}
	return nil
}
