package ir

import "testing"

func TestFindEchoes(t *testing.T) {
	tests := []struct {
		name      string
		ir        []float64
		threshold float64
		want      []int
	}{
		{name: "empty", ir: nil, threshold: 0.1, want: nil},
		{name: "silence", ir: []float64{0, 0, 0}, threshold: 0, want: nil},
		{name: "spaced taps", ir: []float64{1, 0, 0, -0.5, 0, 0, 0.25, 0, 0, 0.01}, threshold: 0.1, want: []int{0, 3, 6}},
		{name: "all taps", ir: []float64{1, 0, 0, -0.5, 0, 0, 0.25, 0, 0, 0.01}, threshold: 0, want: []int{0, 3, 6, 9}},
		{name: "plateau reports first", ir: []float64{0, 1, 1, 0}, threshold: 0.5, want: []int{1}},
		{name: "rising edge skipped", ir: []float64{0.2, 0.6, 1, 0.3}, threshold: 0.1, want: []int{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindEchoes(tt.ir, tt.threshold)
			if len(got) != len(tt.want) {
				t.Fatalf("FindEchoes() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("FindEchoes() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestEchoSpacing(t *testing.T) {
	tests := []struct {
		name   string
		echoes []int
		want   int
	}{
		{name: "none", echoes: nil, want: 0},
		{name: "single", echoes: []int{4}, want: 0},
		{name: "regular", echoes: []int{0, 10, 20, 30}, want: 10},
		{name: "dominant", echoes: []int{0, 7, 17, 27, 37}, want: 10},
		{name: "tie prefers shorter", echoes: []int{0, 5, 15}, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EchoSpacing(tt.echoes); got != tt.want {
				t.Fatalf("EchoSpacing(%v) = %d, want %d", tt.echoes, got, tt.want)
			}
		})
	}
}
