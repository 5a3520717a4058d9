package pattern

// Color is a linear RGBA color.
type Color struct {
	R float64 `json:"r" yaml:"r"`
	G float64 `json:"g" yaml:"g"`
	B float64 `json:"b" yaml:"b"`
	A float64 `json:"a" yaml:"a"`
}

var (
	// White is opaque white.
	White = Color{R: 1, G: 1, B: 1, A: 1}
	// Black is opaque black.
	Black = Color{A: 1}
)

// RGB builds an opaque color.
func RGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// Add returns the component-wise sum.
func (c Color) Add(o Color) Color {
	return Color{R: c.R + o.R, G: c.G + o.G, B: c.B + o.B, A: c.A + o.A}
}

// Scale multiplies every component by s.
func (c Color) Scale(s float64) Color {
	return Color{R: c.R * s, G: c.G * s, B: c.B * s, A: c.A * s}
}

// Lerp interpolates from c to o.
func (c Color) Lerp(o Color, alpha float64) Color {
	return Color{
		R: lerp(c.R, o.R, alpha),
		G: lerp(c.G, o.G, alpha),
		B: lerp(c.B, o.B, alpha),
		A: lerp(c.A, o.A, alpha),
	}
}

// Byte converts a linear channel to 0-255 with clamping.
func Byte(v float64) byte {
	return byte(clamp(v, 0, 1)*255 + 0.5)
}
