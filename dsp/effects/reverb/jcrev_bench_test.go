package reverb

import (
	"testing"

	"github.com/cwbudde/algo-jcrev/internal/testutil"
)

func benchmarkEngine(b *testing.B, p Params) {
	e, err := New(DefaultDelay)
	if err != nil {
		b.Fatal(err)
	}
	block := testutil.DeterministicNoise16(1, 12000, 256)
	for i := 0; i < DefaultDelay/len(block)+1; i++ {
		_ = e.ProcessInPlace(block, &p)
	}

	b.SetBytes(int64(len(block) * 2))
	b.ResetTimer()

	for b.Loop() {
		_ = e.ProcessInPlace(block, &p)
	}
}

func BenchmarkProcessProduction(b *testing.B) {
	benchmarkEngine(b, ProductionParams())
}

func BenchmarkProcessJCRev(b *testing.B) {
	benchmarkEngine(b, JCRevParams())
}
