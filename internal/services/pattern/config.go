package pattern

// Ranges for the pattern configuration fields.
const (
	MinSpeed        = 0.01
	MaxSpeed        = 10.0
	MaxMinIntensity = 1.0
	MaxMaxIntensity = 10.0
)

// Config describes how a light animates.
type Config struct {
	Kind         Kind
	Speed        float64
	PhaseOffset  float64
	MinIntensity float64
	MaxIntensity float64

	// CustomCurve is sampled when Kind is KindCustom.
	CustomCurve FloatCurve

	EnableColorShift bool
	ColorCurve       ColorCurve
}

// DefaultConfig returns a steady pattern at full range.
func DefaultConfig() Config {
	return Config{
		Kind:         KindSteady,
		Speed:        1,
		MinIntensity: 0,
		MaxIntensity: 1,
	}
}

// Clamped returns a copy with every numeric field clamped into its range.
// MinIntensity is not compared against MaxIntensity; an inverted pair is kept as is.
func (c Config) Clamped() Config {
	if !c.Kind.IsValid() {
		c.Kind = KindSteady
	}
	c.Speed = ClampSpeed(c.Speed)
	c.PhaseOffset = clamp(c.PhaseOffset, 0, 1)
	c.MinIntensity = clamp(c.MinIntensity, 0, MaxMinIntensity)
	c.MaxIntensity = clamp(c.MaxIntensity, 0, MaxMaxIntensity)
	return c
}

// ClampSpeed clamps a pattern speed into [MinSpeed, MaxSpeed].
func ClampSpeed(speed float64) float64 {
	return clamp(speed, MinSpeed, MaxSpeed)
}

// Clamp01 clamps v into [0,1].
func Clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

// Clamp is exported for callers that clamp into arbitrary documented ranges.
func Clamp(v, lo, hi float64) float64 {
	return clamp(v, lo, hi)
}
