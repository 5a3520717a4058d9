// Package optics contains closed-form lighting helpers: Fresnel terms, a GGX specular
// estimate, color temperature, shadow softness and cascade splits, and planar
// reflection geometry. Nothing here renders.
package optics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/bbernstein/lacylights-patterns/internal/services/pattern"
)

// Fresnel returns (1 - |v·n|)^exponent.
func Fresnel(view, normal mgl64.Vec3, exponent float64) float64 {
	cos := math.Abs(view.Dot(normal))
	return math.Pow(1-cos, exponent)
}

// FresnelIOR is Schlick's approximation for a dielectric with the given index of refraction.
func FresnelIOR(view, normal mgl64.Vec3, ior float64) float64 {
	cos := math.Abs(view.Dot(normal))
	f0 := math.Pow((1-ior)/(1+ior), 2)
	return f0 + (1-f0)*math.Pow(1-cos, 5)
}

// PBRSpecular estimates the Cook-Torrance specular term with a GGX distribution, Schlick
// Fresnel and Smith geometry, scaled by N·L.
func PBRSpecular(normal, view, lightDir mgl64.Vec3, lightColor pattern.Color, roughness, metallic float64) pattern.Color {
	h := safeNormalize(view.Add(lightDir))
	nh := math.Max(0, normal.Dot(h))
	nv := math.Max(0, normal.Dot(view))
	nl := math.Max(0, normal.Dot(lightDir))

	a := roughness * roughness
	a2 := a * a
	denom := nh*nh*(a2-1) + 1
	d := a2 / (math.Pi * denom * denom)

	f0 := 0.04 + (1-0.04)*metallic
	f := f0 + (1-f0)*math.Pow(1-nv, 5)

	k := (roughness + 1) * (roughness + 1) / 8
	g := (nv / (nv*(1-k) + k)) * (nl / (nl*(1-k) + k))

	specular := (d * f * g) / (4*nv*nl + 0.001)
	return lightColor.Scale(specular * nl)
}

func safeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	if v.Len() < 1e-8 {
		return mgl64.Vec3{}
	}
	return v.Normalize()
}

// ColorTemperature approximates the RGB color of a black body at kelvin.
func ColorTemperature(kelvin float64) pattern.Color {
	temp := kelvin / 100

	var r, g, b float64
	if temp <= 66 {
		r = 255
		g = 99.4708025861*math.Log(temp) - 161.1195681661
		if temp <= 19 {
			b = 0
		} else {
			b = 138.5177312231*math.Log(temp-10) - 305.0447927307
		}
	} else {
		r = 329.698727446 * math.Pow(temp-60, -0.1332047592)
		g = 288.1221695283 * math.Pow(temp-60, -0.0755148492)
		b = 255
	}

	return pattern.RGB(
		pattern.Clamp01(r/255),
		pattern.Clamp01(g/255),
		pattern.Clamp01(b/255),
	)
}

// LuxToIntensity converts illuminance to a light intensity value.
func LuxToIntensity(lux float64) float64 {
	return lux * 0.08
}

// ShadowSoftness returns radius / (distance + 1) clamped to [0,1].
func ShadowSoftness(lightRadius, distance float64) float64 {
	return pattern.Clamp01(lightRadius / (distance + 1))
}

// Penumbra returns the penumbra width cast by an occluder onto a receiver further away,
// clamped to [0, lightRadius].
func Penumbra(lightRadius, occluderDistance, receiverDistance float64) float64 {
	if occluderDistance <= 0 || receiverDistance <= occluderDistance {
		return 0
	}
	size := lightRadius * (receiverDistance - occluderDistance) / occluderDistance
	return pattern.Clamp(size, 0, lightRadius)
}

// CascadeSplits returns count+1 split distances between near and far. Lambda blends the
// uniform split (0) with the logarithmic split (1).
func CascadeSplits(near, far float64, count int, lambda float64) []float64 {
	if count < 1 || near <= 0 {
		return nil
	}
	splits := make([]float64, 0, count+1)
	for i := 0; i <= count; i++ {
		p := float64(i) / float64(count)
		logSplit := near * math.Pow(far/near, p)
		linSplit := near + (far-near)*p
		splits = append(splits, linSplit+(logSplit-linSplit)*lambda)
	}
	return splits
}

// ReflectPoint mirrors point across the plane through origin with the given normal.
func ReflectPoint(point, origin, normal mgl64.Vec3) mgl64.Vec3 {
	n := safeNormalize(normal)
	d := point.Sub(origin).Dot(n)
	return point.Sub(n.Mul(2 * d))
}

// Box is an oriented box volume.
type Box struct {
	Center   mgl64.Vec3
	Extent   mgl64.Vec3
	Rotation mgl64.Quat
}

// NewBox creates an axis-aligned box.
func NewBox(center, extent mgl64.Vec3) Box {
	return Box{Center: center, Extent: extent, Rotation: mgl64.QuatIdent()}
}

// Contains reports whether point lies inside or on the box.
func (b Box) Contains(point mgl64.Vec3) bool {
	local := point.Sub(b.Center)
	if b.Rotation != (mgl64.Quat{}) {
		local = b.Rotation.Inverse().Rotate(local)
	}
	const eps = 1e-9
	return math.Abs(local.X()) <= b.Extent.X()+eps &&
		math.Abs(local.Y()) <= b.Extent.Y()+eps &&
		math.Abs(local.Z()) <= b.Extent.Z()+eps
}
