// Package controller owns the global pattern state of one world: the enabled and pause
// flags, the global intensity and speed multipliers and the master clock. It advances
// every registered light on Tick and fronts the registry's spatial queries.
package controller

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/lacylights-patterns/internal/services/light"
	"github.com/bbernstein/lacylights-patterns/internal/services/pattern"
	"github.com/bbernstein/lacylights-patterns/internal/services/registry"
)

// Ranges for the global multipliers.
const (
	MinGlobalIntensity = 0.0
	MaxGlobalIntensity = 2.0
	MinGlobalSpeed     = 0.1
	MaxGlobalSpeed     = 5.0
)

// DefaultEvictInterval is how much tick time passes between stale-entry sweeps.
const DefaultEvictInterval = 5 * time.Second

// State is a copy of the global flags and multipliers.
type State struct {
	Enabled         bool    `json:"enabled"`
	Paused          bool    `json:"paused"`
	Running         bool    `json:"running"`
	GlobalIntensity float64 `json:"globalIntensity"`
	GlobalSpeed     float64 `json:"globalSpeed"`
	MasterTime      float64 `json:"masterTime"`
}

// Controller holds global pattern state for one registry.
type Controller struct {
	mu sync.RWMutex

	registry *registry.Registry

	enabled         bool
	paused          bool
	globalIntensity float64
	globalSpeed     float64
	masterTime      float64

	evictInterval float64
	sinceEvict    float64
}

// New creates an enabled, unpaused controller with unit multipliers.
func New(reg *registry.Registry) *Controller {
	return &Controller{
		registry:        reg,
		enabled:         true,
		globalIntensity: 1,
		globalSpeed:     1,
		evictInterval:   DefaultEvictInterval.Seconds(),
	}
}

// Registry returns the registry the controller drives.
func (c *Controller) Registry() *registry.Registry {
	return c.registry
}

// SetEvictInterval changes the sweep interval. Non-positive values restore the default.
func (c *Controller) SetEvictInterval(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d <= 0 {
		d = DefaultEvictInterval
	}
	c.evictInterval = d.Seconds()
}

// Tick advances the master clock and every light by dt seconds and sweeps stale
// registry entries once enough tick time has accumulated. It does nothing unless the
// controller is running.
func (c *Controller) Tick(dt float64) {
	c.mu.Lock()
	if !c.enabled || c.paused {
		c.mu.Unlock()
		return
	}
	speed := c.globalSpeed
	c.masterTime += dt * speed
	c.sinceEvict += dt
	evict := c.sinceEvict > c.evictInterval
	if evict {
		c.sinceEvict = 0
	}
	c.mu.Unlock()

	c.registry.Advance(dt, speed)

	if evict {
		if n := c.registry.EvictStale(); n > 0 {
			log.Debug().Int("evicted", n).Msg("Removed stale pattern entries")
		}
	}
}

// SetEnabled turns ticking on or off.
func (c *Controller) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}

// PauseAll stops ticking without changing the enabled flag.
func (c *Controller) PauseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = true
}

// ResumeAll clears the pause flag.
func (c *Controller) ResumeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = false
}

// IsRunning reports enabled && !paused.
func (c *Controller) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled && !c.paused
}

// SetGlobalIntensity sets the intensity multiplier, clamped into [0,2].
func (c *Controller) SetGlobalIntensity(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.globalIntensity = pattern.Clamp(v, MinGlobalIntensity, MaxGlobalIntensity)
}

// GlobalIntensity returns the intensity multiplier.
func (c *Controller) GlobalIntensity() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.globalIntensity
}

// SetGlobalSpeed sets the speed multiplier, clamped into [0.1,5].
func (c *Controller) SetGlobalSpeed(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.globalSpeed = pattern.Clamp(v, MinGlobalSpeed, MaxGlobalSpeed)
}

// GlobalSpeed returns the speed multiplier.
func (c *Controller) GlobalSpeed() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.globalSpeed
}

// MasterTime returns the accumulated, speed-scaled master clock.
func (c *Controller) MasterTime() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.masterTime
}

// State returns a copy of the global state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return State{
		Enabled:         c.enabled,
		Paused:          c.paused,
		Running:         c.enabled && !c.paused,
		GlobalIntensity: c.globalIntensity,
		GlobalSpeed:     c.globalSpeed,
		MasterTime:      c.masterTime,
	}
}

// QueryIntensityAt returns the summed light intensity at point scaled by the global
// intensity.
func (c *Controller) QueryIntensityAt(point mgl64.Vec3) float64 {
	return c.registry.IntensityAt(point) * c.GlobalIntensity()
}

// QueryColorAt returns the intensity-weighted light color at point.
func (c *Controller) QueryColorAt(point mgl64.Vec3) pattern.Color {
	return c.registry.ColorAt(point)
}

// QueryLightsNear returns lights whose radius overlaps the query sphere.
func (c *Controller) QueryLightsNear(point mgl64.Vec3, radius float64) []*light.Light {
	return c.registry.LightsNear(point, radius)
}

// BestReflectionAt returns the strongest reflection probe at point, or nil.
func (c *Controller) BestReflectionAt(point mgl64.Vec3) *light.Reflection {
	return c.registry.BestReflectionAt(point)
}

// TriggerFlashAt flashes lights around point and returns how many were hit.
func (c *Controller) TriggerFlashAt(point mgl64.Vec3, radius, duration, intensity float64) int {
	return c.registry.TriggerFlashNear(point, radius, duration, intensity)
}

// SyncGroup aligns a sync group's phases to its first member.
func (c *Controller) SyncGroup(name string) int {
	return c.registry.SyncGroup(name)
}

// Stats returns a short multi-line summary for diagnostics.
func (c *Controller) Stats() string {
	counts := c.registry.Counts()
	return fmt.Sprintf("Pattern Lights: %d\nReflections: %d\nSync Groups: %d\nMaster Time: %.2f",
		counts.Lights, counts.Reflections, counts.SyncGroups, c.MasterTime())
}
