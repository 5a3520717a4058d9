// Package pattern provides the closed-form light pattern waveforms and their configuration.
package pattern

import (
	"strings"
)

// Kind identifies one of the built-in light patterns.
type Kind string

const (
	// KindSteady holds a constant full value.
	KindSteady Kind = "STEADY"
	// KindPulse is a smooth one-second sine pulse.
	KindPulse Kind = "PULSE"
	// KindFlicker mixes two fast sines.
	KindFlicker Kind = "FLICKER"
	// KindStrobe switches hard between on and off.
	KindStrobe Kind = "STROBE"
	// KindCandle is a gentle three-sine flame wobble.
	KindCandle Kind = "CANDLE"
	// KindFluorescent ramps up over two seconds of a five second cycle with mains buzz.
	KindFluorescent Kind = "FLUORESCENT"
	// KindLightning produces rare sharp peaks.
	KindLightning Kind = "LIGHTNING"
	// KindFire is a deeper three-sine flame.
	KindFire Kind = "FIRE"
	// KindAlarm alternates between full and dim.
	KindAlarm Kind = "ALARM"
	// KindUnderwater is a caustic pattern that depends on world X/Y.
	KindUnderwater Kind = "UNDERWATER"
	// KindHeartbeat is a double-thump beat.
	KindHeartbeat Kind = "HEARTBEAT"
	// KindBreathing is a slow swell between 0.3 and 1.
	KindBreathing Kind = "BREATHING"
	// KindCustom samples a user supplied curve.
	KindCustom Kind = "CUSTOM"
)

var allKinds = []Kind{
	KindSteady,
	KindPulse,
	KindFlicker,
	KindStrobe,
	KindCandle,
	KindFluorescent,
	KindLightning,
	KindFire,
	KindAlarm,
	KindUnderwater,
	KindHeartbeat,
	KindBreathing,
	KindCustom,
}

// Kinds returns every pattern kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// IsValid reports whether k is one of the known kinds.
func (k Kind) IsValid() bool {
	for _, known := range allKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind resolves a kind name case-insensitively. Unknown names return false.
func ParseKind(name string) (Kind, bool) {
	k := Kind(strings.ToUpper(strings.TrimSpace(name)))
	if !k.IsValid() {
		return "", false
	}
	return k, true
}

// DisplayName returns the human readable name shown in pickers.
func (k Kind) DisplayName() string {
	switch k {
	case KindUnderwater:
		return "Underwater Caustics"
	case KindCustom:
		return "Custom Curve"
	case "":
		return ""
	}
	s := strings.ToLower(string(k))
	return strings.ToUpper(s[:1]) + s[1:]
}
