package gate

import "testing"

func TestDecide_Strict(t *testing.T) {
	const minSim = 0.22

	tests := []struct {
		name         string
		similarities []float64
		want         Decision
	}{
		{"all below threshold", []float64{0.1, 0.05}, Refuse},
		{"best above threshold", []float64{0.3, 0.1}, Proceed},
		{"empty similarities", nil, Refuse},
		{"exactly at threshold", []float64{0.22}, Proceed},
		{"just below threshold", []float64{0.2199}, Refuse},
		{"zeros only", []float64{0, 0, 0}, Refuse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.similarities, true, minSim); got != tt.want {
				t.Errorf("Decide(%v) = %v, want %v", tt.similarities, got, tt.want)
			}
		})
	}
}

func TestDecide_NonStrictAlwaysProceeds(t *testing.T) {
	for _, sims := range [][]float64{nil, {0.01}, {0.9}} {
		if got := Decide(sims, false, 0.22); got != Proceed {
			t.Errorf("Decide(%v, strict=false) = %v, want Proceed", sims, got)
		}
	}
}
