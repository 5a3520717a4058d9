package light

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/bbernstein/lacylights-patterns/internal/services/pattern"
)

// Snapshot is an immutable per-frame view of a light.
type Snapshot struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Position        mgl64.Vec3    `json:"position"`
	Radius          float64       `json:"radius"`
	BaseIntensity   float64       `json:"baseIntensity"`
	Intensity       float64       `json:"intensity"`
	Color           pattern.Color `json:"color"`
	Kind            pattern.Kind  `json:"kind"`
	Speed           float64       `json:"speed"`
	PhaseTime       float64       `json:"phaseTime"`
	PhaseOffset     float64       `json:"phaseOffset"`
	FlashMultiplier float64       `json:"flashMultiplier"`
	SyncGroup       string        `json:"syncGroup,omitempty"`
	Crossfading     bool          `json:"crossfading,omitempty"`
	Patch           *Patch        `json:"patch,omitempty"`
}

// Level returns intensity relative to base intensity, clamped to [0,1].
func (s Snapshot) Level() float64 {
	if s.BaseIntensity <= 0 {
		return 0
	}
	return pattern.Clamp01(s.Intensity / s.BaseIntensity)
}

// Snapshot captures the light's current output.
func (l *Light) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Snapshot{
		ID:              l.id,
		Name:            l.name,
		Position:        l.position,
		Radius:          l.radius,
		BaseIntensity:   l.baseIntensity,
		Intensity:       l.intensity(),
		Color:           l.color(),
		Kind:            l.cfg.Kind,
		Speed:           l.cfg.Speed,
		PhaseTime:       l.phaseTime,
		PhaseOffset:     l.cfg.PhaseOffset,
		FlashMultiplier: l.flashMultiplier,
		SyncGroup:       l.syncGroup,
		Crossfading:     l.crossfade != nil,
	}
	if l.patch != nil {
		p := *l.patch
		s.Patch = &p
	}
	return s
}
