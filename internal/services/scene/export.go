package scene

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/bbernstein/lacylights-patterns/internal/services/light"
	"github.com/bbernstein/lacylights-patterns/internal/services/world"
)

// MarshalYAML writes the vector as a flow sequence.
func (v Vec) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, x := range v {
		var n yaml.Node
		if err := n.Encode(x); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &n)
	}
	return node, nil
}

// IsZero reports whether every component is zero.
func (v Vec) IsZero() bool {
	return mgl64.Vec3(v) == mgl64.Vec3{}
}

// Export captures the world's named curves, lights and reflections as a scene. Curves
// a light uses without a name are left out; the light keeps its pattern kind.
func Export(w *world.World) *File {
	f := &File{
		Curves:      w.Curves(),
		Lights:      make([]Light, 0),
		Reflections: make([]Reflection, 0),
	}

	for _, l := range w.Lights() {
		f.Lights = append(f.Lights, exportLight(w, l))
	}
	for _, rf := range w.Reflections() {
		f.Reflections = append(f.Reflections, exportReflection(rf.Snapshot()))
	}
	return f
}

func exportLight(w *world.World, l *light.Light) Light {
	cfg := l.Pattern()
	color := Color(l.BaseColor())
	intensity, radius := l.BaseIntensity(), l.Radius()
	speed, maxIntensity := cfg.Speed, cfg.MaxIntensity

	out := Light{
		ID:           l.ID(),
		Name:         l.Name(),
		Position:     Vec(l.Position()),
		Color:        &color,
		Intensity:    &intensity,
		Radius:       &radius,
		Pattern:      string(cfg.Kind),
		Speed:        &speed,
		PhaseOffset:  cfg.PhaseOffset,
		MinIntensity: cfg.MinIntensity,
		MaxIntensity: &maxIntensity,
		ColorShift:   cfg.EnableColorShift,
		SyncGroup:    l.SyncGroup(),
		Patch:        l.Patch(),
	}
	if name, ok := w.CurveName(cfg.CustomCurve); ok {
		out.Curve = name
	}
	if name, ok := w.CurveName(cfg.ColorCurve); ok {
		out.ColorCurve = name
	}
	return out
}

func exportReflection(s light.ReflectionSnapshot) Reflection {
	radius, intensity, blend := s.Radius, s.Intensity, s.BlendWeight
	return Reflection{
		ID:              s.ID,
		Name:            s.Name,
		Position:        Vec(s.Position),
		Radius:          &radius,
		Intensity:       &intensity,
		BlendWeight:     &blend,
		Quality:         string(s.Quality),
		FresnelExponent: s.FresnelExponent,
		BoxProjection:   s.BoxProjection,
		BoxExtent:       Vec(s.BoxExtent),
	}
}

// Encode writes the scene as YAML.
func (f *File) Encode(out io.Writer) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("failed to encode scene: %w", err)
	}
	return enc.Close()
}
