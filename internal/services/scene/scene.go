// Package scene loads YAML scene files describing lights, reflection probes and named
// curves, and spawns them into a world.
package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/bbernstein/lacylights-patterns/internal/services/curve"
	"github.com/bbernstein/lacylights-patterns/internal/services/light"
	"github.com/bbernstein/lacylights-patterns/internal/services/optics"
	"github.com/bbernstein/lacylights-patterns/internal/services/pattern"
	"github.com/bbernstein/lacylights-patterns/internal/services/world"
)

// Defaults for omitted light fields.
const (
	DefaultIntensity = 5000.0
	DefaultRadius    = 1000.0
)

// Validation errors.
var (
	ErrUnknownCurve   = errors.New("unknown curve")
	ErrUnknownPattern = errors.New("unknown pattern")
	ErrInvalidPatch   = errors.New("invalid patch")
)

// File is a decoded scene file.
type File struct {
	Curves      []curve.Definition `yaml:"curves"`
	Lights      []Light            `yaml:"lights"`
	Reflections []Reflection       `yaml:"reflections"`
}

// Light describes one light. Pointer fields fall back to defaults when omitted.
type Light struct {
	ID           string       `yaml:"id,omitempty"`
	Name         string       `yaml:"name"`
	Position     Vec          `yaml:"position"`
	Color        *Color       `yaml:"color,omitempty"`
	Intensity    *float64     `yaml:"intensity,omitempty"`
	Lux          float64      `yaml:"lux,omitempty"`
	Radius       *float64     `yaml:"radius,omitempty"`
	Pattern      string       `yaml:"pattern,omitempty"`
	Speed        *float64     `yaml:"speed,omitempty"`
	PhaseOffset  float64      `yaml:"phase_offset,omitempty"`
	MinIntensity float64      `yaml:"min_intensity,omitempty"`
	MaxIntensity *float64     `yaml:"max_intensity,omitempty"`
	Curve        string       `yaml:"curve,omitempty"`
	ColorCurve   string       `yaml:"color_curve,omitempty"`
	ColorShift   bool         `yaml:"color_shift,omitempty"`
	SyncGroup    string       `yaml:"sync_group,omitempty"`
	Patch        *light.Patch `yaml:"patch,omitempty"`
}

// Reflection describes one reflection probe.
type Reflection struct {
	ID              string   `yaml:"id,omitempty"`
	Name            string   `yaml:"name"`
	Position        Vec      `yaml:"position"`
	Radius          *float64 `yaml:"radius,omitempty"`
	Intensity       *float64 `yaml:"intensity,omitempty"`
	BlendWeight     *float64 `yaml:"blend_weight,omitempty"`
	Quality         string   `yaml:"quality,omitempty"`
	FresnelExponent float64  `yaml:"fresnel_exponent,omitempty"`
	BoxProjection   bool     `yaml:"box_projection,omitempty"`
	BoxExtent       Vec      `yaml:"box_extent,omitempty"`
}

// Vec is a position written as [x, y, z].
type Vec mgl64.Vec3

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Vec) UnmarshalYAML(node *yaml.Node) error {
	var xs []float64
	if err := node.Decode(&xs); err != nil {
		return err
	}
	if len(xs) != 3 {
		return fmt.Errorf("line %d: expected [x, y, z], got %d numbers", node.Line, len(xs))
	}
	*v = Vec{xs[0], xs[1], xs[2]}
	return nil
}

// Color accepts [r, g, b(, a)], "#rrggbb", {r, g, b, a} or {kelvin: K}.
type Color pattern.Color

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var xs []float64
		if err := node.Decode(&xs); err != nil {
			return err
		}
		switch len(xs) {
		case 3:
			*c = Color(pattern.RGB(xs[0], xs[1], xs[2]))
		case 4:
			*c = Color{R: xs[0], G: xs[1], B: xs[2], A: xs[3]}
		default:
			return fmt.Errorf("line %d: expected [r, g, b] or [r, g, b, a]", node.Line)
		}
		return nil

	case yaml.ScalarNode:
		hex := strings.TrimPrefix(node.Value, "#")
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || len(hex) != 6 {
			return fmt.Errorf("line %d: invalid hex color %q", node.Line, node.Value)
		}
		*c = Color(pattern.RGB(float64(n>>16&0xff)/255, float64(n>>8&0xff)/255, float64(n&0xff)/255))
		return nil

	case yaml.MappingNode:
		var m struct {
			R, G, B float64
			A       *float64
			Kelvin  float64
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		if m.Kelvin > 0 {
			*c = Color(optics.ColorTemperature(m.Kelvin))
			return nil
		}
		a := 1.0
		if m.A != nil {
			a = *m.A
		}
		*c = Color{R: m.R, G: m.G, B: m.B, A: a}
		return nil
	}
	return fmt.Errorf("line %d: invalid color", node.Line)
}

// Parse decodes a scene. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Load reads and parses a scene file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Validate checks pattern names, curve references and patches.
func (f *File) Validate() error {
	float := make(map[string]bool)
	color := make(map[string]bool)
	for _, d := range f.Curves {
		if strings.EqualFold(d.Type, curve.TypeColor) {
			color[d.Name] = true
		} else {
			float[d.Name] = true
		}
	}

	for i, l := range f.Lights {
		label := l.Name
		if label == "" {
			label = strconv.Itoa(i)
		}
		if l.Pattern != "" {
			if _, ok := pattern.ParseKind(l.Pattern); !ok {
				return fmt.Errorf("light %s: %w %q", label, ErrUnknownPattern, l.Pattern)
			}
		}
		if l.Curve != "" && !float[l.Curve] {
			return fmt.Errorf("light %s: %w %q", label, ErrUnknownCurve, l.Curve)
		}
		if l.ColorCurve != "" && !color[l.ColorCurve] {
			return fmt.Errorf("light %s: %w %q", label, ErrUnknownCurve, l.ColorCurve)
		}
		if p := l.Patch; p != nil {
			if _, ok := light.ParsePatchMode(string(p.Mode)); !ok || p.Universe < 1 || p.StartChannel < 1 {
				return fmt.Errorf("light %s: %w", label, ErrInvalidPatch)
			}
		}
	}
	return nil
}

// Result counts what Apply spawned.
type Result struct {
	Curves      int `json:"curves"`
	Lights      int `json:"lights"`
	Reflections int `json:"reflections"`
}

// Apply adds the curves to w and spawns every light and reflection.
func (f *File) Apply(w *world.World) (Result, error) {
	var res Result
	for _, d := range f.Curves {
		if err := w.AddCurve(d); err != nil {
			return res, err
		}
		res.Curves++
	}

	for _, l := range f.Lights {
		opts, err := lightOptions(w, l)
		if err != nil {
			return res, err
		}
		w.SpawnLight(opts)
		res.Lights++
	}

	for _, r := range f.Reflections {
		w.SpawnReflection(reflectionOptions(r))
		res.Reflections++
	}

	log.Info().
		Int("curves", res.Curves).
		Int("lights", res.Lights).
		Int("reflections", res.Reflections).
		Msg("Applied scene")
	return res, nil
}

func lightOptions(w *world.World, l Light) (light.Options, error) {
	cfg := pattern.DefaultConfig()
	if l.Pattern != "" {
		cfg.Kind, _ = pattern.ParseKind(l.Pattern)
	}
	if l.Speed != nil {
		cfg.Speed = *l.Speed
	}
	if l.MaxIntensity != nil {
		cfg.MaxIntensity = *l.MaxIntensity
	}
	cfg.PhaseOffset = l.PhaseOffset
	cfg.MinIntensity = l.MinIntensity
	cfg.EnableColorShift = l.ColorShift

	if l.Curve != "" {
		c, err := w.Curve(l.Curve)
		if err != nil {
			return light.Options{}, fmt.Errorf("light %s: %w %q", l.Name, ErrUnknownCurve, l.Curve)
		}
		cfg.CustomCurve = c
	}
	if l.ColorCurve != "" {
		c, err := w.ColorCurve(l.ColorCurve)
		if err != nil {
			return light.Options{}, fmt.Errorf("light %s: %w %q", l.Name, ErrUnknownCurve, l.ColorCurve)
		}
		cfg.ColorCurve = c
	}

	intensity := DefaultIntensity
	switch {
	case l.Intensity != nil:
		intensity = *l.Intensity
	case l.Lux > 0:
		intensity = optics.LuxToIntensity(l.Lux)
	}
	radius := DefaultRadius
	if l.Radius != nil {
		radius = *l.Radius
	}
	color := pattern.White
	if l.Color != nil {
		color = pattern.Color(*l.Color)
	}

	var patch *light.Patch
	if l.Patch != nil {
		p := *l.Patch
		p.Mode, _ = light.ParsePatchMode(string(p.Mode))
		patch = &p
	}

	return light.Options{
		ID:        l.ID,
		Name:      l.Name,
		Position:  mgl64.Vec3(l.Position),
		Color:     color,
		Intensity: intensity,
		Radius:    radius,
		Pattern:   cfg,
		SyncGroup: l.SyncGroup,
		Patch:     patch,
	}, nil
}

func reflectionOptions(r Reflection) light.ReflectionOptions {
	radius, intensity, blend := DefaultRadius, 1.0, 1.0
	if r.Radius != nil {
		radius = *r.Radius
	}
	if r.Intensity != nil {
		intensity = *r.Intensity
	}
	if r.BlendWeight != nil {
		blend = *r.BlendWeight
	}
	return light.ReflectionOptions{
		ID:              r.ID,
		Name:            r.Name,
		Position:        mgl64.Vec3(r.Position),
		Radius:          radius,
		Intensity:       intensity,
		BlendWeight:     blend,
		Quality:         light.Quality(strings.ToUpper(r.Quality)),
		FresnelExponent: r.FresnelExponent,
		BoxProjection:   r.BoxProjection,
		BoxExtent:       mgl64.Vec3(r.BoxExtent),
	}
}
