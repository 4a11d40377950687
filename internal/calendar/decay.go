package calendar

import "math"

// LinearDecay returns max(0, 100 × (1 − elapsed/window)) clamped to [0, 100].
// A non-positive window degenerates to a step at zero elapsed.
func LinearDecay(elapsed, window float64) float64 {
	if elapsed <= 0 {
		return 100
	}
	if window <= 0 {
		return 0
	}
	return clamp(100*(1-elapsed/window), 0, 100)
}

// StepDecay returns 100 before any elapsed time, 50 inside the window and 0 at or beyond it
func StepDecay(elapsed, window float64) float64 {
	switch {
	case elapsed <= 0:
		return 100
	case elapsed < window:
		return 50
	default:
		return 0
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
