package numbers

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name       string
		v, lo, hi  float64
		want       float64
	}{
		{"below range", -5, 0, 100, 0},
		{"above range", 140, 0, 100, 100},
		{"inside range", 42.5, 0, 100, 42.5},
		{"at lower bound", 0, 0, 100, 0},
		{"at upper bound", 100, 0, 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
				t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestLinearDecay(t *testing.T) {
	tests := []struct {
		name    string
		v, span float64
		want    float64
	}{
		{"overdue", -3, 180, 100},
		{"due today", 0, 180, 100},
		{"half way", 90, 180, 50},
		{"at horizon", 180, 180, 0},
		{"beyond horizon", 365, 180, 0},
		{"zero span", 10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LinearDecay(tt.v, tt.span)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("LinearDecay(%v, %v) = %v, want %v", tt.v, tt.span, got, tt.want)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(75.5649); got != 75.56 {
		t.Errorf("Round2(75.5649) = %v, want 75.56", got)
	}
	if got := Round3(0.78499); got != 0.785 {
		t.Errorf("Round3(0.78499) = %v, want 0.785", got)
	}
}
