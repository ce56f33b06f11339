// Package ir analyses impulse responses of the reverberator.
//
// Decay metrics follow ISO 3382 and are derived from the Schroeder backward
// integral of the squared response:
//
//   - RT60 (from T30, else T20), EDT, T20, T30
//   - C50, C80 clarity and D50, D80 definition
//   - centre time and peak position
//
// Comb reverberators also leave discrete, regularly spaced echoes.
// FindEchoes and EchoSpacing recover them; MagnitudeResponse shows the comb
// notches in the frequency domain.
//
// # Usage
//
//	a := ir.NewAnalyzer(16000)
//	m, err := a.AnalyzePCM16(response)
//	fmt.Printf("RT60 = %.2f s, echo every %d samples\n", m.RT60, m.EchoSpacing)
package ir
