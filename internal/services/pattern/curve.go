package pattern

import (
	"math"
)

// FloatCurve is a scalar curve sampled by the Custom pattern.
type FloatCurve interface {
	Value(t float64) float64
	// Duration is the end of the curve's time range; sampling wraps on it.
	Duration() float64
}

// ColorCurve is a color gradient sampled over phase time for color shifting.
type ColorCurve interface {
	Color(t float64) Color
	Duration() float64
}

// wrapTime maps t into the curve's time range. A non-positive duration leaves t unchanged.
func wrapTime(t, duration float64) float64 {
	if duration <= 0 {
		return t
	}
	return math.Mod(t, duration)
}

// SampleCurve samples a float curve at mod(t, duration).
func SampleCurve(c FloatCurve, t float64) float64 {
	return c.Value(wrapTime(t, c.Duration()))
}

// SampleColorCurve samples a color curve at mod(t, duration).
func SampleColorCurve(c ColorCurve, t float64) Color {
	return c.Color(wrapTime(t, c.Duration()))
}
