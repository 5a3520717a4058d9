// Package light holds the runtime state of animated lights and reflection probes.
//
// Lights and reflections are owned by whoever creates them. Other components keep only
// weak references and must check IsValid before use.
package light

import (
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucsky/cuid"

	"github.com/bbernstein/lacylights-patterns/internal/services/fade"
	"github.com/bbernstein/lacylights-patterns/internal/services/pattern"
)

// MinRadius is the smallest accepted light or reflection radius.
const MinRadius = 1.0

// Options configures a new light.
type Options struct {
	ID        string
	Name      string
	Position  mgl64.Vec3
	Color     pattern.Color
	Intensity float64
	Radius    float64
	Pattern   pattern.Config
	SyncGroup string
	Patch     *Patch
}

// Light is one animated light source.
type Light struct {
	mu sync.RWMutex

	id            string
	name          string
	position      mgl64.Vec3
	baseColor     pattern.Color
	baseIntensity float64
	radius        float64
	cfg           pattern.Config
	syncGroup     string
	patch         *Patch

	phaseTime       float64
	flashTimer      float64
	flashMultiplier float64

	// Set while a pattern crossfade is running.
	from      *pattern.Config
	crossfade *fade.Crossfade

	destroyed atomic.Bool
}

// New creates a light. A missing ID is generated; radius and intensity are clamped.
func New(opts Options) *Light {
	id := opts.ID
	if id == "" {
		id = cuid.New()
	}

	cfg := opts.Pattern
	if cfg.Kind == "" {
		cfg = pattern.DefaultConfig()
	}

	return &Light{
		id:              id,
		name:            opts.Name,
		position:        opts.Position,
		baseColor:       opts.Color,
		baseIntensity:   max(opts.Intensity, 0),
		radius:          max(opts.Radius, MinRadius),
		cfg:             cfg.Clamped(),
		syncGroup:       opts.SyncGroup,
		patch:           opts.Patch,
		flashMultiplier: 1,
	}
}

// ID returns the light's identifier.
func (l *Light) ID() string {
	return l.id
}

// Name returns the display name.
func (l *Light) Name() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.name
}

// Position returns the world position.
func (l *Light) Position() mgl64.Vec3 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.position
}

// SetPosition moves the light.
func (l *Light) SetPosition(p mgl64.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = p
}

// BaseColor returns the unshifted color.
func (l *Light) BaseColor() pattern.Color {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.baseColor
}

// SetBaseColor replaces the unshifted color.
func (l *Light) SetBaseColor(c pattern.Color) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.baseColor = c
}

// BaseIntensity returns the intensity before pattern and flash are applied.
func (l *Light) BaseIntensity() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.baseIntensity
}

// SetBaseIntensity sets the base intensity, clamped to be non-negative.
func (l *Light) SetBaseIntensity(v float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.baseIntensity = max(v, 0)
}

// Radius returns the attenuation radius.
func (l *Light) Radius() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.radius
}

// SetRadius sets the attenuation radius, clamped to MinRadius.
func (l *Light) SetRadius(r float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.radius = max(r, MinRadius)
}

// SyncGroup returns the sync group name, empty when the light is not grouped.
func (l *Light) SyncGroup() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.syncGroup
}

// SetSyncGroup changes the group name. Registries only read it at registration, so
// callers re-register the light afterwards.
func (l *Light) SetSyncGroup(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.syncGroup = name
}

// Patch returns the DMX patch, or nil.
func (l *Light) Patch() *Patch {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.patch == nil {
		return nil
	}
	p := *l.patch
	return &p
}

// SetPatch sets or clears the DMX patch.
func (l *Light) SetPatch(p *Patch) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.patch = p
}

// Pattern returns the pattern configuration.
func (l *Light) Pattern() pattern.Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// SetConfig replaces the whole pattern configuration and cancels any crossfade.
func (l *Light) SetConfig(cfg pattern.Config) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cfg = cfg.Clamped()
	l.from, l.crossfade = nil, nil
}

// SetPattern switches the pattern kind immediately.
func (l *Light) SetPattern(kind pattern.Kind) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cfg.Kind = kind
	l.cfg = l.cfg.Clamped()
	l.from, l.crossfade = nil, nil
}

// SetSpeed sets the pattern speed, clamped into [0.01, 10].
func (l *Light) SetSpeed(speed float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cfg.Speed = pattern.ClampSpeed(speed)
}

// CrossfadeTo blends from the current configuration to cfg over duration seconds.
// A non-positive duration switches immediately.
func (l *Light) CrossfadeTo(cfg pattern.Config, duration float64, easing fade.EasingType) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cfg = cfg.Clamped()
	if duration <= 0 {
		l.cfg = cfg
		l.from, l.crossfade = nil, nil
		return
	}

	from := l.cfg
	l.from = &from
	l.cfg = cfg
	l.crossfade = fade.NewCrossfade(duration, easing)
}

// Crossfading reports whether a pattern crossfade is in progress.
func (l *Light) Crossfading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.crossfade != nil
}

// BeginPlay initializes the phase. An ungrouped light with a zero offset gets a random
// offset in [0,1) so identical lights do not pulse in lockstep. A nil rng uses the
// package-level source.
func (l *Light) BeginPlay(rng *rand.Rand) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.syncGroup == "" && l.cfg.PhaseOffset == 0 {
		if rng != nil {
			l.cfg.PhaseOffset = rng.Float64()
		} else {
			l.cfg.PhaseOffset = rand.Float64()
		}
	}
	l.phaseTime = l.cfg.PhaseOffset
}

// Advance moves the light forward by dt seconds. Per-light speed and globalSpeed
// compound.
func (l *Light) Advance(dt, globalSpeed float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.phaseTime += dt * l.cfg.Speed * globalSpeed

	if l.crossfade != nil && l.crossfade.Advance(dt) {
		l.from, l.crossfade = nil, nil
	}

	if l.flashTimer > 0 {
		l.flashTimer -= dt
		if l.flashTimer <= 0 {
			l.flashTimer = 0
			l.flashMultiplier = 1
		}
	}
}

// TriggerFlash multiplies the output by multiplier for duration seconds. A new flash
// replaces any flash in progress, so TriggerFlash(0, 1) cancels one.
func (l *Light) TriggerFlash(duration, multiplier float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.flashTimer = duration
	l.flashMultiplier = multiplier
}

// SyncWith copies other's phase time and phase offset.
func (l *Light) SyncWith(other *Light) {
	if other == nil || other == l {
		return
	}
	phase, offset := other.phase()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.phaseTime = phase
	l.cfg.PhaseOffset = offset
}

func (l *Light) phase() (float64, float64) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.phaseTime, l.cfg.PhaseOffset
}

// PhaseTime returns the accumulated phase time.
func (l *Light) PhaseTime() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.phaseTime
}

// PhaseOffset returns the configured phase offset.
func (l *Light) PhaseOffset() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg.PhaseOffset
}

// FlashMultiplier returns the active flash multiplier, 1 when no flash is running.
func (l *Light) FlashMultiplier() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.flashMultiplier
}

// FlashTimer returns the remaining flash time.
func (l *Light) FlashTimer() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.flashTimer
}

// CurrentIntensity returns base intensity × pattern value × flash multiplier.
func (l *Light) CurrentIntensity() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.intensity()
}

func (l *Light) intensity() float64 {
	pos := l.position
	value := pattern.EvaluateConfig(l.cfg, l.phaseTime, &pos)
	if l.crossfade != nil && l.from != nil {
		value = l.crossfade.Blend(pattern.EvaluateConfig(*l.from, l.phaseTime, &pos), value)
	}
	return l.baseIntensity * value * l.flashMultiplier
}

// CurrentColor returns the base color, or the color curve sample when color shifting is
// enabled and a curve is set.
func (l *Light) CurrentColor() pattern.Color {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.color()
}

func (l *Light) color() pattern.Color {
	if l.cfg.EnableColorShift && l.cfg.ColorCurve != nil {
		return pattern.SampleColorCurve(l.cfg.ColorCurve, l.phaseTime)
	}
	return l.baseColor
}

// Destroy ends the light's life. Holders of weak references see IsValid return false.
func (l *Light) Destroy() {
	l.destroyed.Store(true)
}

// IsValid reports whether the light is alive. It is safe to call on a nil light.
func (l *Light) IsValid() bool {
	return l != nil && !l.destroyed.Load()
}
