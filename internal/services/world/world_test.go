package world

import (
	"runtime"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbernstein/lacylights-patterns/internal/services/curve"
	"github.com/bbernstein/lacylights-patterns/internal/services/fade"
	"github.com/bbernstein/lacylights-patterns/internal/services/light"
	"github.com/bbernstein/lacylights-patterns/internal/services/pattern"
	"github.com/bbernstein/lacylights-patterns/internal/services/pubsub"
	"github.com/bbernstein/lacylights-patterns/internal/services/registry"
)

func newWorld() (*World, *registry.Registry) {
	reg := registry.New()
	return New(reg, nil, 42), reg
}

func steady(name string) light.Options {
	return light.Options{
		Name:      name,
		Intensity: 10,
		Radius:    100,
		Color:     pattern.White,
		Pattern:   pattern.Config{Kind: pattern.KindSteady, Speed: 1, MaxIntensity: 1},
	}
}

func TestSpawnLight_RegistersAndStarts(t *testing.T) {
	w, reg := newWorld()

	l := w.SpawnLight(steady("a"))
	require.NotEmpty(t, l.ID())
	assert.Equal(t, 1, reg.Counts().Lights)
	assert.InDelta(t, 10, reg.IntensityAt(mgl64.Vec3{}), 1e-12)

	got, err := w.Light(l.ID())
	require.NoError(t, err)
	assert.Same(t, l, got)

	// Ungrouped lights get a random phase offset on BeginPlay.
	assert.Greater(t, l.PhaseOffset(), 0.0)
	assert.Equal(t, l.PhaseOffset(), l.PhaseTime())
}

func TestSpawnLight_SeedIsDeterministic(t *testing.T) {
	a := New(registry.New(), nil, 7).SpawnLight(steady("a"))
	b := New(registry.New(), nil, 7).SpawnLight(steady("a"))
	assert.Equal(t, a.PhaseOffset(), b.PhaseOffset())
}

func TestSpawnLight_ReplacesSameID(t *testing.T) {
	w, reg := newWorld()
	opts := steady("a")
	opts.ID = "fixed"

	first := w.SpawnLight(opts)
	second := w.SpawnLight(opts)
	assert.False(t, first.IsValid())
	assert.True(t, second.IsValid())
	assert.Len(t, w.Lights(), 1)
	assert.Len(t, reg.Lights(), 1)
}

func TestDestroyLight_LeavesRegistryEntryForSweep(t *testing.T) {
	w, reg := newWorld()
	l := w.SpawnLight(steady("a"))

	require.NoError(t, w.DestroyLight(l.ID()))
	assert.False(t, l.IsValid())
	assert.Equal(t, 1, reg.Counts().Lights, "entry stays until the sweep")
	assert.Empty(t, reg.Lights())
	assert.Equal(t, 0.0, reg.IntensityAt(mgl64.Vec3{}))

	reg.EvictStale()
	assert.Equal(t, 0, reg.Counts().Lights)

	assert.ErrorIs(t, w.DestroyLight(l.ID()), ErrLightNotFound)
}

func TestDroppedLightIsCollected(t *testing.T) {
	w, reg := newWorld()
	l := w.SpawnLight(steady("a"))
	id := l.ID()
	l = nil

	require.NoError(t, w.DestroyLight(id))
	runtime.GC()
	assert.Empty(t, reg.Lights())
}

func TestRemoveLight_Unregisters(t *testing.T) {
	w, reg := newWorld()
	l := w.SpawnLight(steady("a"))

	require.NoError(t, w.RemoveLight(l.ID()))
	assert.False(t, l.IsValid())
	assert.Equal(t, 0, reg.Counts().Lights)
	assert.ErrorIs(t, w.RemoveLight(l.ID()), ErrLightNotFound)

	_, err := w.Light(l.ID())
	assert.ErrorIs(t, err, ErrLightNotFound)
}

func TestReflections(t *testing.T) {
	w, reg := newWorld()
	a := w.SpawnReflection(light.ReflectionOptions{ID: "a", Radius: 50, Intensity: 1, BlendWeight: 1})
	b := w.SpawnReflection(light.ReflectionOptions{ID: "b", Radius: 50, Intensity: 2, BlendWeight: 1})

	assert.Equal(t, []*light.Reflection{a, b}, w.Reflections())
	assert.Same(t, b, reg.BestReflectionAt(mgl64.Vec3{}))

	require.NoError(t, w.DestroyReflection("b"))
	assert.Same(t, a, reg.BestReflectionAt(mgl64.Vec3{}))
	assert.Equal(t, 2, reg.Counts().Reflections)

	require.NoError(t, w.RemoveReflection("a"))
	assert.Equal(t, 1, reg.Counts().Reflections)
	assert.ErrorIs(t, w.RemoveReflection("a"), ErrReflectionNotFound)
	_, err := w.Reflection("a")
	assert.ErrorIs(t, err, ErrReflectionNotFound)
}

func TestLights_Ordered(t *testing.T) {
	w, _ := newWorld()
	w.SpawnLight(steady("b"))
	w.SpawnLight(steady("a"))
	w.SpawnLight(steady("c"))

	var names []string
	for _, l := range w.Lights() {
		names = append(names, l.Name())
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestMutators(t *testing.T) {
	w, reg := newWorld()
	l := w.SpawnLight(steady("a"))
	id := l.ID()

	require.NoError(t, w.MoveLight(id, mgl64.Vec3{500, 0, 0}))
	assert.Equal(t, mgl64.Vec3{500, 0, 0}, l.Position())
	assert.Equal(t, 0.0, reg.IntensityAt(mgl64.Vec3{}))

	require.NoError(t, w.SetLightPattern(id, pattern.Config{Kind: pattern.KindStrobe, Speed: 50}))
	assert.Equal(t, pattern.KindStrobe, l.Pattern().Kind)
	assert.Equal(t, pattern.MaxSpeed, l.Pattern().Speed)

	require.NoError(t, w.CrossfadeLight(id, pattern.DefaultConfig(), 2, fade.EasingLinear))
	assert.True(t, l.Crossfading())

	require.NoError(t, w.SetSyncGroup(id, "hall"))
	assert.Equal(t, "hall", l.SyncGroup())
	assert.Equal(t, []*light.Light{l}, reg.LightsInSyncGroup("hall"))

	assert.ErrorIs(t, w.MoveLight("missing", mgl64.Vec3{}), ErrLightNotFound)
	assert.ErrorIs(t, w.SetLightPattern("missing", pattern.Config{}), ErrLightNotFound)
	assert.ErrorIs(t, w.CrossfadeLight("missing", pattern.Config{}, 1, fade.EasingLinear), ErrLightNotFound)
	assert.ErrorIs(t, w.SetSyncGroup("missing", "x"), ErrLightNotFound)
	assert.ErrorIs(t, w.FlashLight("missing", 1, 2), ErrLightNotFound)
}

func TestFlash_PublishesEvents(t *testing.T) {
	ps := pubsub.New()
	sub := ps.Subscribe(pubsub.TopicFlash, "", 4)
	w := New(registry.New(), ps, 1)
	l := w.SpawnLight(steady("a"))

	require.NoError(t, w.FlashLight(l.ID(), 0.5, 3))
	assert.Equal(t, 3.0, l.FlashMultiplier())

	ev := (<-sub.Channel).(FlashEvent)
	assert.Equal(t, l.ID(), ev.LightID)
	assert.Equal(t, 1, ev.Hit)

	hit := w.FlashNear(mgl64.Vec3{}, 10, 1, 2)
	assert.Equal(t, 1, hit)
	ev = (<-sub.Channel).(FlashEvent)
	assert.Empty(t, ev.LightID)
	assert.Equal(t, 10.0, ev.Radius)

	// Zero-duration flashes are not published.
	w.FlashNear(mgl64.Vec3{}, 10, 0, 2)
	select {
	case msg := <-sub.Channel:
		t.Fatalf("unexpected event %v", msg)
	default:
	}
}

func TestCurves(t *testing.T) {
	w, _ := newWorld()

	require.NoError(t, w.AddCurve(curve.Definition{Name: "ramp", Keys: [][]float64{{0, 0}, {1, 1}}}))
	require.NoError(t, w.AddCurve(curve.Definition{Name: "tint", Type: curve.TypeColor, Keys: [][]float64{{0, 1, 0, 0}}}))
	require.Error(t, w.AddCurve(curve.Definition{Name: "bad", Type: "NOPE"}))

	c, err := w.Curve("ramp")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, c.Value(0.5), 1e-12)

	_, err = w.Curve("tint")
	assert.ErrorIs(t, err, ErrCurveNotFound)
	cc, err := w.ColorCurve("tint")
	require.NoError(t, err)
	assert.Equal(t, 1.0, cc.Color(0).R)

	defs := w.Curves()
	require.Len(t, defs, 2)
	assert.Equal(t, "ramp", defs[0].Name)
	assert.Equal(t, curve.TypeColor, defs[1].Type)

	name, ok := w.CurveName(c)
	assert.True(t, ok)
	assert.Equal(t, "ramp", name)
}

func TestClear(t *testing.T) {
	w, reg := newWorld()
	l := w.SpawnLight(steady("a"))
	rf := w.SpawnReflection(light.ReflectionOptions{Radius: 5})
	require.NoError(t, w.AddCurve(curve.Definition{Name: "s", Type: curve.TypeScript, Script: "0.5"}))
	s, err := w.Curve("s")
	require.NoError(t, err)

	w.Clear()
	assert.False(t, l.IsValid())
	assert.False(t, rf.IsValid())
	assert.Empty(t, w.Lights())
	assert.Empty(t, w.Curves())
	assert.Equal(t, registry.Stats{}, reg.Counts())
	assert.Equal(t, 1.0, s.Value(0), "closed script falls back")
}
