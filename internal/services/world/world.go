// Package world owns the live lights, reflection probes and named curves of one pattern
// scene. It is the strong-reference side of the registry: lights stay alive while the
// world holds them and the registry only tracks them weakly.
package world

import (
	"errors"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/lacylights-patterns/internal/database/repositories"
	"github.com/bbernstein/lacylights-patterns/internal/services/curve"
	"github.com/bbernstein/lacylights-patterns/internal/services/fade"
	"github.com/bbernstein/lacylights-patterns/internal/services/light"
	"github.com/bbernstein/lacylights-patterns/internal/services/pattern"
	"github.com/bbernstein/lacylights-patterns/internal/services/pubsub"
	"github.com/bbernstein/lacylights-patterns/internal/services/registry"
)

// Lookup errors.
var (
	ErrLightNotFound      = errors.New("light not found")
	ErrReflectionNotFound = errors.New("reflection not found")
	ErrCurveNotFound      = errors.New("curve not found")
	ErrNoDatabase         = errors.New("preset storage is not configured")
)

// FlashEvent is published on pubsub.TopicFlash.
type FlashEvent struct {
	LightID    string     `json:"lightId,omitempty"`
	Point      mgl64.Vec3 `json:"point"`
	Radius     float64    `json:"radius,omitempty"`
	Duration   float64    `json:"duration"`
	Multiplier float64    `json:"multiplier"`
	Hit        int        `json:"hit"`
}

// Repositories groups the preset stores. Any field may be nil.
type Repositories struct {
	Lights      *repositories.LightPresetRepository
	Reflections *repositories.ReflectionPresetRepository
	Curves      *repositories.CurvePresetRepository
}

type namedCurve struct {
	name  string
	float pattern.FloatCurve
	color pattern.ColorCurve
}

// World holds strong references to everything it spawns.
type World struct {
	mu sync.RWMutex

	registry *registry.Registry
	pubsub   *pubsub.PubSub
	repos    Repositories
	rng      *rand.Rand

	lights      map[string]*light.Light
	reflections map[string]*light.Reflection
	curves      map[string]*namedCurve
}

// New creates an empty world. A zero seed draws a random one. ps may be nil.
func New(reg *registry.Registry, ps *pubsub.PubSub, seed uint64) *World {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &World{
		registry:    reg,
		pubsub:      ps,
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		lights:      make(map[string]*light.Light),
		reflections: make(map[string]*light.Reflection),
		curves:      make(map[string]*namedCurve),
	}
}

// SetRepositories attaches preset storage.
func (w *World) SetRepositories(repos Repositories) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.repos = repos
}

// Registry returns the registry the world registers into.
func (w *World) Registry() *registry.Registry {
	return w.registry
}

// SpawnLight creates a light, starts it and registers it.
func (w *World) SpawnLight(opts light.Options) *light.Light {
	l := light.New(opts)

	w.mu.Lock()
	l.BeginPlay(w.rng)
	if old, ok := w.lights[l.ID()]; ok {
		w.registry.UnregisterLight(old)
		old.Destroy()
	}
	w.lights[l.ID()] = l
	w.mu.Unlock()

	w.registry.RegisterLight(l)
	log.Debug().Str("id", l.ID()).Str("pattern", string(l.Pattern().Kind)).Msg("Spawned pattern light")
	return l
}

// SpawnReflection creates a reflection probe and registers it.
func (w *World) SpawnReflection(opts light.ReflectionOptions) *light.Reflection {
	rf := light.NewReflection(opts)

	w.mu.Lock()
	if old, ok := w.reflections[rf.ID()]; ok {
		w.registry.UnregisterReflection(old)
		old.Destroy()
	}
	w.reflections[rf.ID()] = rf
	w.mu.Unlock()

	w.registry.RegisterReflection(rf)
	return rf
}

// DestroyLight ends a light's life without unregistering it. The registry skips it
// immediately and drops the entry on its next sweep.
func (w *World) DestroyLight(id string) error {
	w.mu.Lock()
	l, ok := w.lights[id]
	delete(w.lights, id)
	w.mu.Unlock()
	if !ok {
		return ErrLightNotFound
	}
	l.Destroy()
	return nil
}

// RemoveLight unregisters and destroys a light.
func (w *World) RemoveLight(id string) error {
	w.mu.Lock()
	l, ok := w.lights[id]
	delete(w.lights, id)
	w.mu.Unlock()
	if !ok {
		return ErrLightNotFound
	}
	w.registry.UnregisterLight(l)
	l.Destroy()
	return nil
}

// DestroyReflection ends a probe's life without unregistering it.
func (w *World) DestroyReflection(id string) error {
	w.mu.Lock()
	rf, ok := w.reflections[id]
	delete(w.reflections, id)
	w.mu.Unlock()
	if !ok {
		return ErrReflectionNotFound
	}
	rf.Destroy()
	return nil
}

// RemoveReflection unregisters and destroys a probe.
func (w *World) RemoveReflection(id string) error {
	w.mu.Lock()
	rf, ok := w.reflections[id]
	delete(w.reflections, id)
	w.mu.Unlock()
	if !ok {
		return ErrReflectionNotFound
	}
	w.registry.UnregisterReflection(rf)
	rf.Destroy()
	return nil
}

// Light returns a live light by ID.
func (w *World) Light(id string) (*light.Light, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	l, ok := w.lights[id]
	if !ok {
		return nil, ErrLightNotFound
	}
	return l, nil
}

// Lights returns every light the world owns, ordered by name then ID.
func (w *World) Lights() []*light.Light {
	w.mu.RLock()
	out := make([]*light.Light, 0, len(w.lights))
	for _, l := range w.lights {
		out = append(out, l)
	}
	w.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if a, b := out[i].Name(), out[j].Name(); a != b {
			return a < b
		}
		return out[i].ID() < out[j].ID()
	})
	return out
}

// Reflection returns a live probe by ID.
func (w *World) Reflection(id string) (*light.Reflection, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	rf, ok := w.reflections[id]
	if !ok {
		return nil, ErrReflectionNotFound
	}
	return rf, nil
}

// Reflections returns every probe the world owns, ordered by ID.
func (w *World) Reflections() []*light.Reflection {
	w.mu.RLock()
	out := make([]*light.Reflection, 0, len(w.reflections))
	for _, rf := range w.reflections {
		out = append(out, rf)
	}
	w.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// MoveLight sets a light's position.
func (w *World) MoveLight(id string, pos mgl64.Vec3) error {
	l, err := w.Light(id)
	if err != nil {
		return err
	}
	l.SetPosition(pos)
	return nil
}

// SetLightPattern replaces a light's pattern configuration.
func (w *World) SetLightPattern(id string, cfg pattern.Config) error {
	l, err := w.Light(id)
	if err != nil {
		return err
	}
	l.SetConfig(cfg)
	return nil
}

// CrossfadeLight blends a light to cfg over duration seconds.
func (w *World) CrossfadeLight(id string, cfg pattern.Config, duration float64, easing fade.EasingType) error {
	l, err := w.Light(id)
	if err != nil {
		return err
	}
	l.CrossfadeTo(cfg, duration, easing)
	return nil
}

// SetSyncGroup moves a light to another sync group. The registry indexes groups at
// registration, so the light is registered again.
func (w *World) SetSyncGroup(id, group string) error {
	l, err := w.Light(id)
	if err != nil {
		return err
	}
	w.registry.UnregisterLight(l)
	l.SetSyncGroup(group)
	w.registry.RegisterLight(l)
	return nil
}

// FlashLight flashes one light and publishes the event.
func (w *World) FlashLight(id string, duration, multiplier float64) error {
	l, err := w.Light(id)
	if err != nil {
		return err
	}
	l.TriggerFlash(duration, multiplier)
	w.publishFlash(FlashEvent{
		LightID:    id,
		Point:      l.Position(),
		Duration:   duration,
		Multiplier: multiplier,
		Hit:        1,
	})
	return nil
}

// FlashNear flashes lights around point through the registry and publishes the event.
func (w *World) FlashNear(point mgl64.Vec3, radius, duration, multiplier float64) int {
	hit := w.registry.TriggerFlashNear(point, radius, duration, multiplier)
	w.publishFlash(FlashEvent{
		Point:      point,
		Radius:     radius,
		Duration:   duration,
		Multiplier: multiplier,
		Hit:        hit,
	})
	return hit
}

func (w *World) publishFlash(ev FlashEvent) {
	if w.pubsub != nil && ev.Duration > 0 {
		w.pubsub.Publish(pubsub.TopicFlash, ev.LightID, ev)
	}
}

// AddCurve builds and stores a named curve, replacing any curve with the same name.
func (w *World) AddCurve(def curve.Definition) error {
	built, err := def.Build()
	if err != nil {
		return err
	}

	w.mu.Lock()
	old := w.curves[def.Name]
	w.curves[def.Name] = &namedCurve{name: def.Name, float: built.Float, color: built.Color}
	w.mu.Unlock()

	closeCurve(old)
	return nil
}

// Curve returns a named float curve.
func (w *World) Curve(name string) (pattern.FloatCurve, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.curves[name]
	if !ok || c.float == nil {
		return nil, ErrCurveNotFound
	}
	return c.float, nil
}

// ColorCurve returns a named color curve.
func (w *World) ColorCurve(name string) (pattern.ColorCurve, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.curves[name]
	if !ok || c.color == nil {
		return nil, ErrCurveNotFound
	}
	return c.color, nil
}

// Curves returns the definitions of every named curve, ordered by name.
func (w *World) Curves() []curve.Definition {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]curve.Definition, 0, len(w.curves))
	for name, c := range w.curves {
		var src any = c.float
		if c.color != nil {
			src = c.color
		}
		if def, ok := curve.Describe(name, src); ok {
			out = append(out, def)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CurveName finds the name a curve was stored under.
func (w *World) CurveName(c any) (string, bool) {
	if c == nil {
		return "", false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	for name, nc := range w.curves {
		if (nc.float != nil && any(nc.float) == c) || (nc.color != nil && any(nc.color) == c) {
			return name, true
		}
	}
	return "", false
}

// Clear removes and destroys everything the world owns.
func (w *World) Clear() {
	w.mu.Lock()
	lights, reflections, curves := w.lights, w.reflections, w.curves
	w.lights = make(map[string]*light.Light)
	w.reflections = make(map[string]*light.Reflection)
	w.curves = make(map[string]*namedCurve)
	w.mu.Unlock()

	for _, l := range lights {
		w.registry.UnregisterLight(l)
		l.Destroy()
	}
	for _, rf := range reflections {
		w.registry.UnregisterReflection(rf)
		rf.Destroy()
	}
	for _, c := range curves {
		closeCurve(c)
	}
}

func closeCurve(c *namedCurve) {
	if c == nil {
		return
	}
	if s, ok := c.float.(*curve.Script); ok {
		s.Close()
	}
}
