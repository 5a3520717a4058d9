package curve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bbernstein/lacylights-patterns/internal/services/pattern"
)

// Curve types.
const (
	TypeFloat  = "FLOAT"
	TypeColor  = "COLOR"
	TypeScript = "SCRIPT"
)

// ErrUnknownType is returned for a definition with an unrecognized type.
var ErrUnknownType = errors.New("unknown curve type")

// Definition is the serializable form of a curve.
type Definition struct {
	Name     string      `json:"name" yaml:"name"`
	Type     string      `json:"type" yaml:"type"`
	Keys     [][]float64 `json:"keys,omitempty" yaml:"keys,omitempty"`
	Script   string      `json:"script,omitempty" yaml:"script,omitempty"`
	Duration float64     `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// Built holds the result of Build. Exactly one of Float and Color is set.
type Built struct {
	Float pattern.FloatCurve
	Color pattern.ColorCurve
}

// Build compiles the definition. An empty type means FLOAT.
func (d Definition) Build() (Built, error) {
	switch strings.ToUpper(d.Type) {
	case TypeFloat, "":
		keys, err := ParseKeys(d.Keys)
		if err != nil {
			return Built{}, fmt.Errorf("curve %q: %w", d.Name, err)
		}
		return Built{Float: NewFloat(keys)}, nil
	case TypeColor:
		keys, err := ParseColorKeys(d.Keys)
		if err != nil {
			return Built{}, fmt.Errorf("curve %q: %w", d.Name, err)
		}
		return Built{Color: NewColor(keys)}, nil
	case TypeScript:
		s, err := NewScript(d.Script, d.Duration)
		if err != nil {
			return Built{}, fmt.Errorf("curve %q: %w", d.Name, err)
		}
		return Built{Float: s}, nil
	}
	return Built{}, fmt.Errorf("curve %q: %w %q", d.Name, ErrUnknownType, d.Type)
}

// Describe returns the definition of a curve built by this package.
func Describe(name string, c any) (Definition, bool) {
	switch c := c.(type) {
	case *Float:
		rows := make([][]float64, 0, len(c.keys))
		for _, k := range c.keys {
			rows = append(rows, []float64{k.Time, k.Value})
		}
		return Definition{Name: name, Type: TypeFloat, Keys: rows}, true
	case *Color:
		rows := make([][]float64, 0, len(c.keys))
		for _, k := range c.keys {
			rows = append(rows, []float64{k.Time, k.Color.R, k.Color.G, k.Color.B, k.Color.A})
		}
		return Definition{Name: name, Type: TypeColor, Keys: rows}, true
	case *Script:
		return Definition{Name: name, Type: TypeScript, Script: c.source, Duration: c.duration}, true
	}
	return Definition{}, false
}
