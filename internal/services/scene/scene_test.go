package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbernstein/lacylights-patterns/internal/services/light"
	"github.com/bbernstein/lacylights-patterns/internal/services/optics"
	"github.com/bbernstein/lacylights-patterns/internal/services/pattern"
	"github.com/bbernstein/lacylights-patterns/internal/services/registry"
	"github.com/bbernstein/lacylights-patterns/internal/services/world"
)

const hallScene = `
curves:
  - name: ramp
    keys: [[0, 0], [2, 1]]
  - name: dusk
    type: COLOR
    keys: [[0, 1, 0.5, 0], [1, 0, 0, 1]]
  - name: wobble
    type: SCRIPT
    script: "0.5 + 0.5 * math.sin(t)"
    duration: 6.283

lights:
  - name: hall-a
    position: [0, 0, 0]
    color: [1, 0.5, 0]
    intensity: 100
    radius: 50
    pattern: pulse
    speed: 2
    sync_group: hall
    patch: {universe: 1, start_channel: 1, mode: rgb}
  - name: hall-b
    position: [10, 0, 0]
    color: {kelvin: 3200}
    lux: 1000
    pattern: custom
    curve: ramp
    color_curve: dusk
    color_shift: true
    sync_group: hall
  - name: lamp
    color: "#ff8000"

reflections:
  - name: mirror
    position: [0, 0, 5]
    radius: 200
    intensity: 1.5
    quality: high
    box_projection: true
    box_extent: [10, 10, 3]
  - name: default
`

func TestParse_FullScene(t *testing.T) {
	f, err := Parse(strings.NewReader(hallScene))
	require.NoError(t, err)
	require.Len(t, f.Curves, 3)
	require.Len(t, f.Lights, 3)
	require.Len(t, f.Reflections, 2)

	a := f.Lights[0]
	assert.Equal(t, Color(pattern.RGB(1, 0.5, 0)), *a.Color)
	assert.Equal(t, 100.0, *a.Intensity)
	assert.Equal(t, &light.Patch{Universe: 1, StartChannel: 1, Mode: "rgb"}, a.Patch)

	b := f.Lights[1]
	assert.Equal(t, Color(optics.ColorTemperature(3200)), *b.Color)
	assert.Nil(t, b.Intensity)

	lamp := f.Lights[2]
	assert.InDelta(t, 1.0, lamp.Color.R, 1e-12)
	assert.InDelta(t, 128.0/255, lamp.Color.G, 1e-12)
	assert.Equal(t, 0.0, lamp.Color.B)
	assert.Equal(t, 1.0, lamp.Color.A)
}

func TestApply_SpawnsIntoWorld(t *testing.T) {
	f, err := Parse(strings.NewReader(hallScene))
	require.NoError(t, err)

	reg := registry.New()
	w := world.New(reg, nil, 1)
	res, err := f.Apply(w)
	require.NoError(t, err)
	assert.Equal(t, Result{Curves: 3, Lights: 3, Reflections: 2}, res)

	lights := w.Lights()
	require.Len(t, lights, 3)

	hallA := lights[0]
	assert.Equal(t, "hall-a", hallA.Name())
	assert.Equal(t, pattern.KindPulse, hallA.Pattern().Kind)
	assert.Equal(t, 2.0, hallA.Pattern().Speed)
	assert.Equal(t, light.PatchRGB, hallA.Patch().Mode)

	hallB := lights[1]
	cfg := hallB.Pattern()
	assert.Equal(t, pattern.KindCustom, cfg.Kind)
	require.NotNil(t, cfg.CustomCurve)
	require.NotNil(t, cfg.ColorCurve)
	assert.True(t, cfg.EnableColorShift)
	assert.Equal(t, optics.LuxToIntensity(1000), hallB.BaseIntensity())
	assert.Equal(t, DefaultRadius, hallB.Radius())

	lamp := lights[2]
	assert.Equal(t, DefaultIntensity, lamp.BaseIntensity())
	assert.Equal(t, pattern.KindSteady, lamp.Pattern().Kind)

	assert.Equal(t, []string{"hall"}, reg.SyncGroups())
	assert.Len(t, reg.LightsInSyncGroup("hall"), 2)

	var mirror, def light.ReflectionSnapshot
	for _, rf := range w.Reflections() {
		s := rf.Snapshot()
		if s.Name == "mirror" {
			mirror = s
		} else {
			def = s
		}
	}
	assert.Equal(t, light.QualityHigh, mirror.Quality)
	assert.Equal(t, 512, mirror.Resolution)
	assert.Equal(t, mgl64.Vec3{10, 10, 3}, mirror.BoxExtent)
	assert.True(t, mirror.BoxProjection)
	assert.Equal(t, 1.0, def.BlendWeight)
	assert.Equal(t, 1.0, def.Intensity)
	assert.Equal(t, light.QualityMedium, def.Quality)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"unknown pattern", "lights:\n  - pattern: disco\n", ErrUnknownPattern},
		{"unknown curve", "lights:\n  - pattern: custom\n    curve: nope\n", ErrUnknownCurve},
		{"float curve used as color", "curves:\n  - name: r\n    keys: [[0, 1]]\nlights:\n  - color_curve: r\n", ErrUnknownCurve},
		{"bad patch mode", "lights:\n  - patch: {universe: 1, start_channel: 1, mode: cmyk}\n", ErrInvalidPatch},
		{"zero universe", "lights:\n  - patch: {universe: 0, start_channel: 1}\n", ErrInvalidPatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParse_RejectsMalformedInput(t *testing.T) {
	inputs := map[string]string{
		"unknown field": "lights:\n  - brightness: 3\n",
		"short vector":  "lights:\n  - position: [1, 2]\n",
		"bad hex":       "lights:\n  - color: \"#12\"\n",
		"long color":    "lights:\n  - color: [1, 2, 3, 4, 5]\n",
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	f, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Lights)
}

func TestApply_BadCurveDefinition(t *testing.T) {
	f, err := Parse(strings.NewReader("curves:\n  - name: broken\n    type: SCRIPT\n    script: \"+\"\n"))
	require.NoError(t, err)
	_, err = f.Apply(world.New(registry.New(), nil, 1))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(hallScene), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, f.Lights, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestExport_RoundTrip(t *testing.T) {
	f, err := Parse(strings.NewReader(hallScene))
	require.NoError(t, err)
	src := world.New(registry.New(), nil, 3)
	_, err = f.Apply(src)
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, Export(src).Encode(&buf))
	assert.Contains(t, buf.String(), "position: [0, 0, 0]")
	assert.NotContains(t, buf.String(), "lux:")

	again, err := Parse(strings.NewReader(buf.String()))
	require.NoError(t, err, buf.String())
	dst := world.New(registry.New(), nil, 4)
	res, err := again.Apply(dst)
	require.NoError(t, err)
	assert.Equal(t, Result{Curves: 3, Lights: 3, Reflections: 2}, res)

	want, got := src.Lights(), dst.Lights()
	require.Len(t, got, len(want))
	for i := range want {
		a, b := want[i], got[i]
		assert.Equal(t, a.ID(), b.ID())
		assert.Equal(t, a.Name(), b.Name())
		assert.Equal(t, a.Position(), b.Position())
		assert.Equal(t, a.BaseColor(), b.BaseColor())
		assert.Equal(t, a.BaseIntensity(), b.BaseIntensity())
		assert.Equal(t, a.Radius(), b.Radius())
		assert.Equal(t, a.SyncGroup(), b.SyncGroup())
		assert.Equal(t, a.Patch(), b.Patch())

		ca, cb := a.Pattern(), b.Pattern()
		assert.Equal(t, ca.Kind, cb.Kind)
		assert.Equal(t, ca.Speed, cb.Speed)
		assert.Equal(t, ca.PhaseOffset, cb.PhaseOffset)
		assert.Equal(t, ca.EnableColorShift, cb.EnableColorShift)
		assert.Equal(t, ca.CustomCurve == nil, cb.CustomCurve == nil)
		assert.Equal(t, ca.ColorCurve == nil, cb.ColorCurve == nil)
	}

	mirror, err := dst.Reflection(src.Reflections()[0].ID())
	require.NoError(t, err)
	assert.Equal(t, src.Reflections()[0].Snapshot(), mirror.Snapshot())
}

func TestExport_EmptyWorld(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, Export(world.New(registry.New(), nil, 1)).Encode(&buf))

	f, err := Parse(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Empty(t, f.Lights)
	assert.Empty(t, f.Curves)
}
