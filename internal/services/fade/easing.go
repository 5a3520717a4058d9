// Package fade provides easing curves and timed crossfades between light patterns.
package fade

import (
	"math"
	"strings"
)

// EasingType represents the type of easing function to use for crossfades.
type EasingType string

const (
	// EasingLinear provides constant rate of change.
	EasingLinear EasingType = "LINEAR"
	// EasingInOutCubic provides smooth acceleration and deceleration.
	EasingInOutCubic EasingType = "EASE_IN_OUT_CUBIC"
	// EasingInOutSine provides gentle sine wave easing.
	EasingInOutSine EasingType = "EASE_IN_OUT_SINE"
	// EasingOutExponential provides sharp start, smooth end.
	EasingOutExponential EasingType = "EASE_OUT_EXPONENTIAL"
	// EasingBezier provides bezier curve easing.
	EasingBezier EasingType = "BEZIER"
	// EasingSCurve provides sigmoid function easing.
	EasingSCurve EasingType = "S_CURVE"
)

// DefaultEasing is used when a crossfade does not name one.
const DefaultEasing = EasingInOutSine

var easings = map[EasingType]func(float64) float64{
	EasingLinear: func(p float64) float64 { return p },
	EasingInOutCubic: func(p float64) float64 {
		if p < 0.5 {
			return 4 * p * p * p
		}
		q := -2*p + 2
		return 1 - q*q*q/2
	},
	EasingInOutSine: func(p float64) float64 {
		return -(math.Cos(math.Pi*p) - 1) / 2
	},
	EasingOutExponential: func(p float64) float64 {
		if p == 1 {
			return 1
		}
		return 1 - math.Pow(2, -10*p)
	},
	// Standard ease-in-out control points (0.42, 0, 0.58, 1), y only.
	EasingBezier: func(p float64) float64 {
		return cubicBezierY(0, 1, p)
	},
	// Sigmoid with steepness 10 centred on 0.5.
	EasingSCurve: func(p float64) float64 {
		return 1 / (1 + math.Exp(-10*(p-0.5)))
	},
}

// ParseEasing resolves an easing name case-insensitively. The empty name maps to DefaultEasing.
func ParseEasing(name string) (EasingType, bool) {
	if strings.TrimSpace(name) == "" {
		return DefaultEasing, true
	}
	e := EasingType(strings.ToUpper(strings.TrimSpace(name)))
	if _, ok := easings[e]; !ok {
		return "", false
	}
	return e, true
}

// ApplyEasing applies an easing function to a progress value (0-1).
// Unknown easing types fall back to linear.
func ApplyEasing(progress float64, easingType EasingType) float64 {
	if fn, ok := easings[easingType]; ok {
		return fn(progress)
	}
	return progress
}

// cubicBezierY evaluates the y polynomial of a cubic bezier with endpoints 0 and 1.
func cubicBezierY(p1y, p2y, t float64) float64 {
	cy := 3 * p1y
	by := 3*(p2y-p1y) - cy
	ay := 1 - cy - by
	return ((ay*t+by)*t + cy) * t
}

// Interpolate calculates an eased value between start and end.
func Interpolate(start, end, progress float64, easingType EasingType) float64 {
	if easingType == "" {
		easingType = DefaultEasing
	}
	return start + (end-start)*ApplyEasing(progress, easingType)
}
