package light

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucsky/cuid"

	"github.com/bbernstein/lacylights-patterns/internal/services/pattern"
)

// Quality is the capture quality of a reflection probe.
type Quality string

const (
	QualityLow    Quality = "LOW"
	QualityMedium Quality = "MEDIUM"
	QualityHigh   Quality = "HIGH"
	QualityUltra  Quality = "ULTRA"
)

// Resolution returns the capture cube size for the quality level.
func (q Quality) Resolution() int {
	switch q {
	case QualityLow:
		return 128
	case QualityHigh:
		return 512
	case QualityUltra:
		return 1024
	default:
		return 256
	}
}

// ParseQuality converts a case-insensitive name; empty means medium.
func ParseQuality(s string) (Quality, bool) {
	switch q := Quality(strings.ToUpper(strings.TrimSpace(s))); q {
	case "":
		return QualityMedium, true
	case QualityLow, QualityMedium, QualityHigh, QualityUltra:
		return q, true
	}
	return "", false
}

// Reflection ranges.
const (
	MaxReflectionIntensity = 2.0
	MinFresnelExponent     = 1.0
	MaxFresnelExponent     = 10.0
)

// ReflectionOptions configures a new reflection probe.
type ReflectionOptions struct {
	ID              string
	Name            string
	Position        mgl64.Vec3
	Radius          float64
	Intensity       float64
	BlendWeight     float64
	Quality         Quality
	FresnelExponent float64
	BoxProjection   bool
	BoxExtent       mgl64.Vec3
}

// Reflection is a reflection probe's influence volume.
type Reflection struct {
	mu sync.RWMutex

	id              string
	name            string
	position        mgl64.Vec3
	radius          float64
	intensity       float64
	blendWeight     float64
	quality         Quality
	fresnelExponent float64
	boxProjection   bool
	boxExtent       mgl64.Vec3

	destroyed atomic.Bool
}

// NewReflection creates a reflection probe with every field clamped into range.
func NewReflection(opts ReflectionOptions) *Reflection {
	id := opts.ID
	if id == "" {
		id = cuid.New()
	}
	quality, ok := ParseQuality(string(opts.Quality))
	if !ok {
		quality = QualityMedium
	}
	fresnel := opts.FresnelExponent
	if fresnel == 0 {
		fresnel = 5
	}

	return &Reflection{
		id:              id,
		name:            opts.Name,
		position:        opts.Position,
		radius:          max(opts.Radius, MinRadius),
		intensity:       pattern.Clamp(opts.Intensity, 0, MaxReflectionIntensity),
		blendWeight:     pattern.Clamp01(opts.BlendWeight),
		quality:         quality,
		fresnelExponent: pattern.Clamp(fresnel, MinFresnelExponent, MaxFresnelExponent),
		boxProjection:   opts.BoxProjection,
		boxExtent:       opts.BoxExtent,
	}
}

// ID returns the probe identifier.
func (r *Reflection) ID() string {
	return r.id
}

// Position returns the probe position.
func (r *Reflection) Position() mgl64.Vec3 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.position
}

// SetPosition moves the probe.
func (r *Reflection) SetPosition(p mgl64.Vec3) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.position = p
}

// Radius returns the influence radius.
func (r *Reflection) Radius() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.radius
}

// Intensity returns the probe intensity.
func (r *Reflection) Intensity() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.intensity
}

// SetIntensity sets the probe intensity, clamped into [0,2].
func (r *Reflection) SetIntensity(v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intensity = pattern.Clamp(v, 0, MaxReflectionIntensity)
}

// BlendWeight returns the blend weight.
func (r *Reflection) BlendWeight() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.blendWeight
}

// SetBlendWeight sets the blend weight, clamped into [0,1].
func (r *Reflection) SetBlendWeight(v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blendWeight = pattern.Clamp01(v)
}

// Weight returns intensity × (1 - d/radius) for a point strictly inside the radius.
// The second result is false outside.
func (r *Reflection) Weight(point mgl64.Vec3) (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d := point.Sub(r.position).Len()
	if d >= r.radius {
		return 0, false
	}
	return r.intensity * (1 - d/r.radius), true
}

// IntensityAt returns intensity × linear falloff × blend weight, 0 outside the radius.
func (r *Reflection) IntensityAt(point mgl64.Vec3) float64 {
	w, ok := r.Weight(point)
	if !ok {
		return 0
	}
	return w * r.BlendWeight()
}

// Destroy ends the probe's life.
func (r *Reflection) Destroy() {
	r.destroyed.Store(true)
}

// IsValid reports whether the probe is alive. It is safe to call on a nil probe.
func (r *Reflection) IsValid() bool {
	return r != nil && !r.destroyed.Load()
}

// ReflectionSnapshot is a read-only view of a probe.
type ReflectionSnapshot struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Position        mgl64.Vec3 `json:"position"`
	Radius          float64    `json:"radius"`
	Intensity       float64    `json:"intensity"`
	BlendWeight     float64    `json:"blendWeight"`
	Quality         Quality    `json:"quality"`
	Resolution      int        `json:"resolution"`
	FresnelExponent float64    `json:"fresnelExponent"`
	BoxProjection   bool       `json:"boxProjection"`
	BoxExtent       mgl64.Vec3 `json:"boxExtent"`
}

// Snapshot captures the probe's settings.
func (r *Reflection) Snapshot() ReflectionSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return ReflectionSnapshot{
		ID:              r.id,
		Name:            r.name,
		Position:        r.position,
		Radius:          r.radius,
		Intensity:       r.intensity,
		BlendWeight:     r.blendWeight,
		Quality:         r.quality,
		Resolution:      r.quality.Resolution(),
		FresnelExponent: r.fresnelExponent,
		BoxProjection:   r.boxProjection,
		BoxExtent:       r.boxExtent,
	}
}
