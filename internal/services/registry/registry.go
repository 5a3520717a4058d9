// Package registry tracks live lights and reflection probes within one world and answers
// spatial queries over them.
//
// The registry never owns what it tracks. Entries are weak references that are checked
// for liveness on every use; dead entries are skipped until EvictStale removes them.
package registry

import (
	"slices"
	"sync"
	"weak"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/bbernstein/lacylights-patterns/internal/services/light"
	"github.com/bbernstein/lacylights-patterns/internal/services/pattern"
)

type lightRef = weak.Pointer[light.Light]
type reflectionRef = weak.Pointer[light.Reflection]

// Registry holds weak references to lights, reflections and sync groups.
type Registry struct {
	mu sync.RWMutex

	lights      []lightRef
	reflections []reflectionRef
	groups      map[string][]lightRef
	groupOrder  []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		groups: make(map[string][]lightRef),
	}
}

// RegisterLight adds l. Registering the same light twice has no effect. A light with a
// sync group also joins that group.
func (r *Registry) RegisterLight(l *light.Light) {
	if !l.IsValid() {
		return
	}
	ref := weak.Make(l)
	group := l.SyncGroup()

	r.mu.Lock()
	defer r.mu.Unlock()

	if !slices.Contains(r.lights, ref) {
		r.lights = append(r.lights, ref)
	}
	if group == "" {
		return
	}
	members, ok := r.groups[group]
	if !ok {
		r.groupOrder = append(r.groupOrder, group)
	}
	if !slices.Contains(members, ref) {
		r.groups[group] = append(members, ref)
	}
}

// UnregisterLight removes l and drops it from every sync group. Group names are kept.
func (r *Registry) UnregisterLight(l *light.Light) {
	if l == nil {
		return
	}
	ref := weak.Make(l)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lights = slices.DeleteFunc(r.lights, func(p lightRef) bool { return p == ref })
	for name, members := range r.groups {
		r.groups[name] = slices.DeleteFunc(members, func(p lightRef) bool { return p == ref })
	}
}

// RegisterReflection adds a reflection probe. Registering twice has no effect.
func (r *Registry) RegisterReflection(rf *light.Reflection) {
	if !rf.IsValid() {
		return
	}
	ref := weak.Make(rf)

	r.mu.Lock()
	defer r.mu.Unlock()

	if !slices.Contains(r.reflections, ref) {
		r.reflections = append(r.reflections, ref)
	}
}

// UnregisterReflection removes a reflection probe.
func (r *Registry) UnregisterReflection(rf *light.Reflection) {
	if rf == nil {
		return
	}
	ref := weak.Make(rf)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.reflections = slices.DeleteFunc(r.reflections, func(p reflectionRef) bool { return p == ref })
}

// liveLights resolves every reference that still points at a valid light, in
// registration order.
func (r *Registry) liveLights() []*light.Light {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return resolve(r.lights)
}

func (r *Registry) liveReflections() []*light.Reflection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*light.Reflection, 0, len(r.reflections))
	for _, ref := range r.reflections {
		if rf := ref.Value(); rf.IsValid() {
			out = append(out, rf)
		}
	}
	return out
}

func resolve(refs []lightRef) []*light.Light {
	out := make([]*light.Light, 0, len(refs))
	for _, ref := range refs {
		if l := ref.Value(); l.IsValid() {
			out = append(out, l)
		}
	}
	return out
}

// Lights returns the live lights in registration order.
func (r *Registry) Lights() []*light.Light {
	return r.liveLights()
}

// Reflections returns the live reflection probes in registration order.
func (r *Registry) Reflections() []*light.Reflection {
	return r.liveReflections()
}

// LightsInSyncGroup returns the live members of a group.
func (r *Registry) LightsInSyncGroup(name string) []*light.Light {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return resolve(r.groups[name])
}

// SyncGroups returns the known group names in the order they were first seen.
func (r *Registry) SyncGroups() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.groupOrder)
}

// IntensityAt sums each light's current intensity with quadratic falloff. Lights at or
// beyond their radius contribute nothing.
func (r *Registry) IntensityAt(point mgl64.Vec3) float64 {
	total := 0.0
	for _, l := range r.liveLights() {
		falloff, ok := falloff(point, l.Position(), l.Radius())
		if !ok {
			continue
		}
		total += l.CurrentIntensity() * falloff * falloff
	}
	return total
}

// ColorAt returns the average of light colors weighted by linear falloff × intensity.
// It returns opaque black when nothing contributes.
func (r *Registry) ColorAt(point mgl64.Vec3) pattern.Color {
	var sum pattern.Color
	weight := 0.0
	for _, l := range r.liveLights() {
		falloff, ok := falloff(point, l.Position(), l.Radius())
		if !ok {
			continue
		}
		w := falloff * l.CurrentIntensity()
		sum = sum.Add(l.CurrentColor().Scale(w))
		weight += w
	}
	if weight <= 0 {
		return pattern.Black
	}
	return sum.Scale(1 / weight)
}

// LightsNear returns lights whose own radius overlaps the query sphere.
func (r *Registry) LightsNear(point mgl64.Vec3, radius float64) []*light.Light {
	var out []*light.Light
	for _, l := range r.liveLights() {
		if point.Sub(l.Position()).Len() <= radius+l.Radius() {
			out = append(out, l)
		}
	}
	return out
}

// BestReflectionAt returns the probe with the highest intensity × linear falloff at
// point, or nil. On equal weights the earlier registration wins.
func (r *Registry) BestReflectionAt(point mgl64.Vec3) *light.Reflection {
	var best *light.Reflection
	bestWeight := 0.0
	for _, rf := range r.liveReflections() {
		w, ok := rf.Weight(point)
		if ok && w > bestWeight {
			best, bestWeight = rf, w
		}
	}
	return best
}

// TriggerFlashNear flashes every light within radius of point. The multiplier falls off
// linearly with distance. It returns the number of lights flashed.
func (r *Registry) TriggerFlashNear(point mgl64.Vec3, radius, duration, intensity float64) int {
	if radius <= 0 {
		return 0
	}
	n := 0
	for _, l := range r.liveLights() {
		falloff, ok := falloff(point, l.Position(), radius)
		if !ok {
			continue
		}
		l.TriggerFlash(duration, intensity*falloff)
		n++
	}
	return n
}

// SyncGroup aligns every live member of a group with the first live member. It returns
// the number of members in the group.
func (r *Registry) SyncGroup(name string) int {
	members := r.LightsInSyncGroup(name)
	if len(members) == 0 {
		return 0
	}
	master := members[0]
	for _, l := range members[1:] {
		l.SyncWith(master)
	}
	return len(members)
}

// Advance moves every live light forward by dt.
func (r *Registry) Advance(dt, globalSpeed float64) {
	for _, l := range r.liveLights() {
		l.Advance(dt, globalSpeed)
	}
}

// Stats holds registry counts. Stale entries are counted until evicted.
type Stats struct {
	Lights      int `json:"lights"`
	Reflections int `json:"reflections"`
	SyncGroups  int `json:"syncGroups"`
}

// Counts returns the number of tracked entries.
func (r *Registry) Counts() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Stats{
		Lights:      len(r.lights),
		Reflections: len(r.reflections),
		SyncGroups:  len(r.groups),
	}
}

// EvictStale drops every reference whose referent is gone and returns how many entries
// were removed from the light and reflection lists.
func (r *Registry) EvictStale() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	deadLight := func(p lightRef) bool { return !p.Value().IsValid() }

	before := len(r.lights) + len(r.reflections)
	r.lights = slices.DeleteFunc(r.lights, deadLight)
	r.reflections = slices.DeleteFunc(r.reflections, func(p reflectionRef) bool { return !p.Value().IsValid() })
	for name, members := range r.groups {
		r.groups[name] = slices.DeleteFunc(members, deadLight)
	}
	return before - len(r.lights) - len(r.reflections)
}

// Clear forgets everything.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lights = nil
	r.reflections = nil
	r.groups = make(map[string][]lightRef)
	r.groupOrder = nil
}

// falloff returns 1 - d/radius for points strictly inside radius.
func falloff(point, center mgl64.Vec3, radius float64) (float64, bool) {
	d := point.Sub(center).Len()
	// A NaN distance is outside every radius.
	if !(d < radius) {
		return 0, false
	}
	return 1 - d/radius, true
}
