// Package reverb provides an integer Schroeder reverberator ("JCRev") for
// 16-bit mono PCM.
//
// The Engine keeps one delay line of (input, output) pairs. Per sample it
// runs three serial all-pass stages, pops comb0 from the end of the line,
// taps three more combs, and pushes the new pair. Coefficients are passed on
// every call through Params; ProductionParams and JCRevParams hold the two
// tunings in use.
//
// # Usage
//
//	e, err := reverb.New(reverb.DefaultDelay)
//	if err != nil {
//		return err
//	}
//	defer e.Close()
//
//	p := reverb.ProductionParams()
//	err = e.ProcessInPlace(block, &p)
//
// Arithmetic is bit-exact integer with single-precision gains; output is
// reproducible across runs and instances.
package reverb
