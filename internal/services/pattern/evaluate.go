package pattern

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Evaluate returns the raw waveform value of a kind at phase time t.
// Values are roughly in [0,1]; Fluorescent can overshoot slightly. Underwater uses the
// position-independent caustic and Custom returns 1 since no curve is available here.
func Evaluate(kind Kind, t float64) float64 {
	return evaluate(kind, t, nil, nil)
}

// EvaluateAt is Evaluate with a world position, used by the Underwater caustic.
func EvaluateAt(kind Kind, t float64, pos mgl64.Vec3) float64 {
	return evaluate(kind, t, &pos, nil)
}

// EvaluateScaled evaluates kind at time scaled by speed.
func EvaluateScaled(kind Kind, time, speed float64) float64 {
	return Evaluate(kind, time*speed)
}

// EvaluateConfig maps the configured waveform into [MinIntensity, MaxIntensity].
// The raw value is clamped to [0,1] first so the result always stays between the two
// endpoints, whichever order they are in.
func EvaluateConfig(cfg Config, t float64, pos *mgl64.Vec3) float64 {
	raw := evaluate(cfg.Kind, t, pos, cfg.CustomCurve)
	return lerp(cfg.MinIntensity, cfg.MaxIntensity, clamp(raw, 0, 1))
}

// LerpPatterns blends two waveforms evaluated at the same time.
func LerpPatterns(a, b Kind, t, alpha float64) float64 {
	return lerp(Evaluate(a, t), Evaluate(b, t), alpha)
}

func evaluate(kind Kind, t float64, pos *mgl64.Vec3, custom FloatCurve) float64 {
	switch kind {
	case KindSteady:
		return 1

	case KindPulse:
		return 0.5 + 0.5*math.Sin(t*2*math.Pi)

	case KindFlicker:
		return 0.7 + 0.3*math.Sin(t*20)*math.Sin(t*7.3)

	case KindStrobe:
		if math.Sin(t*10) > 0 {
			return 1
		}
		return 0

	case KindCandle:
		return 0.8 + 0.2*math.Sin(t*12)*math.Sin(t*5.7)*math.Sin(t*3.1)

	case KindFluorescent:
		startup := clamp(math.Mod(t, 5)/2, 0, 1)
		buzz := 0.05 * math.Sin(t*120)
		return startup + buzz*startup

	case KindLightning:
		return math.Pow(math.Max(0, math.Sin(t*0.5)), 20)

	case KindFire:
		return 0.7 + 0.3*math.Sin(t*8)*math.Sin(t*4.3)*math.Sin(t*2.1)

	case KindAlarm:
		if math.Sin(t*4) > 0 {
			return 1
		}
		return 0.2

	case KindUnderwater:
		if pos == nil {
			return 0.7 + 0.3*math.Sin(t)*math.Sin(t*0.7)
		}
		return 0.7 + 0.3*math.Sin(pos.X()*0.01+t)*math.Sin(pos.Y()*0.01+t*0.7)

	case KindHeartbeat:
		beat := math.Pow(math.Sin(t*2.5), 12)
		echo := math.Pow(math.Sin(t*2.5+0.3), 12) * 0.5
		return math.Max(beat, echo)

	case KindBreathing:
		return 0.3 + 0.7*(math.Sin(t*0.5)*0.5+0.5)

	case KindCustom:
		if custom != nil {
			return SampleCurve(custom, t)
		}
	}
	return 1
}

func lerp(a, b, alpha float64) float64 {
	return a + (b-a)*alpha
}

// clamp maps NaN to lo.
func clamp(v, lo, hi float64) float64 {
	if v < lo || math.IsNaN(v) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
