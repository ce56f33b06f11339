package ir

import (
	"math"
	"sort"

	"github.com/cwbudde/algo-jcrev/dsp/core"
)

// FindEchoes returns the positions of isolated local maxima of |ir| whose
// level is at least thresholdRatio times the absolute peak. On a plateau only
// the first sample is reported. A thresholdRatio <= 0 reports every local
// maximum that is not zero.
func FindEchoes(ir []float64, thresholdRatio float64) []int {
	if len(ir) == 0 {
		return nil
	}

	threshold := thresholdRatio * peakAbs(ir)

	var out []int
	for i, v := range ir {
		av := math.Abs(v)
		if av == 0 || av < threshold {
			continue
		}
		if i > 0 && math.Abs(ir[i-1]) >= av {
			continue
		}
		if i+1 < len(ir) && math.Abs(ir[i+1]) > av {
			continue
		}
		out = append(out, i)
	}

	return out
}

// EchoSpacing returns the most frequent distance between consecutive echoes,
// preferring the shorter distance on ties, or 0 for fewer than two echoes.
func EchoSpacing(echoes []int) int {
	if len(echoes) < 2 {
		return 0
	}

	counts := make(map[int]int, len(echoes))
	for i := 1; i < len(echoes); i++ {
		counts[echoes[i]-echoes[i-1]]++
	}

	gaps := make([]int, 0, len(counts))
	for g := range counts {
		gaps = append(gaps, g)
	}
	sort.Ints(gaps)

	best := gaps[0]
	for _, g := range gaps[1:] {
		if counts[g] > counts[best] {
			best = g
		}
	}

	return best
}

// echoDecayDB is the average level change in dB between consecutive
// echoes, or 0 when there are fewer than two.
func echoDecayDB(ir []float64, echoes []int) float64 {
	if len(echoes) < 2 {
		return 0
	}

	first := math.Abs(ir[echoes[0]])
	last := math.Abs(ir[echoes[len(echoes)-1]])

	return core.LinearToDB(last/first) / float64(len(echoes)-1)
}
