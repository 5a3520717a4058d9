package optics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"

	"github.com/bbernstein/lacylights-patterns/internal/services/pattern"
)

var up = mgl64.Vec3{0, 0, 1}

func TestFresnel(t *testing.T) {
	assert.InDelta(t, 0.0, Fresnel(up, up, 5), 1e-12, "head-on")
	assert.InDelta(t, 1.0, Fresnel(mgl64.Vec3{1, 0, 0}, up, 5), 1e-12, "grazing")

	view := mgl64.Vec3{1, 0, 1}.Normalize()
	assert.InDelta(t, math.Pow(1-math.Sqrt2/2, 2), Fresnel(view, up, 2), 1e-12)
}

func TestFresnelIOR(t *testing.T) {
	// Glass: f0 = ((1-1.5)/(1+1.5))^2 = 0.04.
	assert.InDelta(t, 0.04, FresnelIOR(up, up, 1.5), 1e-12)
	assert.InDelta(t, 1.0, FresnelIOR(mgl64.Vec3{0, 1, 0}, up, 1.5), 1e-12)
}

func TestPBRSpecular(t *testing.T) {
	c := PBRSpecular(up, up, up, pattern.White, 0.5, 0)
	assert.Greater(t, c.R, 0.0)
	assert.Equal(t, c.R, c.G)

	behind := PBRSpecular(up, up, mgl64.Vec3{0, 0, -1}, pattern.White, 0.5, 0)
	assert.Equal(t, 0.0, behind.R)

	metal := PBRSpecular(up, up, up, pattern.White, 0.5, 1)
	assert.Greater(t, metal.R, c.R)
}

func TestColorTemperature(t *testing.T) {
	daylight := ColorTemperature(6600)
	assert.InDelta(t, 1.0, daylight.R, 1e-9)
	assert.Greater(t, daylight.G, 0.9)

	candle := ColorTemperature(1900)
	assert.Equal(t, 1.0, candle.R)
	assert.Equal(t, 0.0, candle.B)
	assert.Less(t, candle.G, 0.6)

	sky := ColorTemperature(15000)
	assert.Equal(t, 1.0, sky.B)
	assert.Less(t, sky.R, 1.0)
	assert.Equal(t, 1.0, sky.A)
}

func TestLuxAndSoftness(t *testing.T) {
	assert.InDelta(t, 40, LuxToIntensity(500), 1e-12)
	assert.InDelta(t, 0.5, ShadowSoftness(5, 9), 1e-12)
	assert.Equal(t, 1.0, ShadowSoftness(100, 1))
}

func TestPenumbra(t *testing.T) {
	assert.InDelta(t, 5, Penumbra(10, 100, 150), 1e-12)
	assert.Equal(t, 10.0, Penumbra(10, 10, 1000), "clamped to light radius")
	assert.Equal(t, 0.0, Penumbra(10, 0, 50))
	assert.Equal(t, 0.0, Penumbra(10, 50, 50))
}

func TestCascadeSplits(t *testing.T) {
	linear := CascadeSplits(1, 101, 4, 0)
	assert.Equal(t, []float64{1, 26, 51, 76, 101}, linear)

	log := CascadeSplits(1, 10000, 4, 1)
	assert.InDelta(t, 10, log[1], 1e-9)
	assert.InDelta(t, 100, log[2], 1e-9)
	assert.InDelta(t, 10000, log[4], 1e-9)

	assert.Nil(t, CascadeSplits(1, 100, 0, 0.5))
}

func TestReflectPoint(t *testing.T) {
	p := ReflectPoint(mgl64.Vec3{3, 4, 5}, mgl64.Vec3{0, 0, 1}, mgl64.Vec3{0, 0, 2})
	assert.True(t, p.ApproxEqual(mgl64.Vec3{3, 4, -3}))
}

func TestBoxContains(t *testing.T) {
	b := NewBox(mgl64.Vec3{10, 0, 0}, mgl64.Vec3{5, 5, 5})
	assert.True(t, b.Contains(mgl64.Vec3{10, 0, 0}))
	assert.True(t, b.Contains(mgl64.Vec3{15, 5, -5}))
	assert.False(t, b.Contains(mgl64.Vec3{16, 0, 0}))

	rotated := Box{
		Center:   mgl64.Vec3{},
		Extent:   mgl64.Vec3{10, 1, 1},
		Rotation: mgl64.QuatRotate(math.Pi/2, up),
	}
	assert.True(t, rotated.Contains(mgl64.Vec3{0, 9, 0}))
	assert.False(t, rotated.Contains(mgl64.Vec3{9, 0, 0}))

	zero := Box{Extent: mgl64.Vec3{1, 1, 1}}
	assert.True(t, zero.Contains(mgl64.Vec3{0.5, 0, 0}))
}
