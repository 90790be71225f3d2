package numbers

import "math"

// Clamp bounds v to the [lo, hi] interval.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampPercent bounds v to [0, 100].
func ClampPercent(v float64) float64 {
	return Clamp(v, 0, 100)
}

// Round2 rounds to 2 decimal places
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Round3 rounds to 3 decimal places
func Round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

// LinearDecay maps v linearly from 100 at v<=0 down to 0 at v>=span.
func LinearDecay(v, span float64) float64 {
	if span <= 0 {
		return 0
	}
	return Clamp(100*(1-v/span), 0, 100)
}
