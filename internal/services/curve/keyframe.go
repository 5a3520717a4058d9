// Package curve provides sampled curves used by custom patterns and color shifting.
package curve

import (
	"fmt"
	"sort"

	"github.com/bbernstein/lacylights-patterns/internal/services/pattern"
)

// Key is a single float keyframe.
type Key struct {
	Time  float64 `json:"time" yaml:"time"`
	Value float64 `json:"value" yaml:"value"`
}

// ColorKey is a single color keyframe.
type ColorKey struct {
	Time  float64       `json:"time" yaml:"time"`
	Color pattern.Color `json:"color" yaml:"color"`
}

// Float is a piecewise-linear scalar curve. Sampling before the first key or after the
// last returns the nearest key's value.
type Float struct {
	keys []Key
}

// NewFloat builds a float curve. Keys are sorted by time.
func NewFloat(keys []Key) *Float {
	sorted := make([]Key, len(keys))
	copy(sorted, keys)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	return &Float{keys: sorted}
}

// Keys returns a copy of the keyframes.
func (c *Float) Keys() []Key {
	out := make([]Key, len(c.keys))
	copy(out, c.keys)
	return out
}

// Duration returns the time of the last key.
func (c *Float) Duration() float64 {
	if len(c.keys) == 0 {
		return 0
	}
	return c.keys[len(c.keys)-1].Time
}

// Value samples the curve at t.
func (c *Float) Value(t float64) float64 {
	n := len(c.keys)
	switch {
	case n == 0:
		return 0
	case t <= c.keys[0].Time:
		return c.keys[0].Value
	case t >= c.keys[n-1].Time:
		return c.keys[n-1].Value
	}

	i := sort.Search(n, func(i int) bool { return c.keys[i].Time > t })
	a, b := c.keys[i-1], c.keys[i]
	span := b.Time - a.Time
	if span <= 0 {
		return b.Value
	}
	return a.Value + (b.Value-a.Value)*(t-a.Time)/span
}

// Color is a piecewise-linear color gradient.
type Color struct {
	keys []ColorKey
}

// NewColor builds a color curve. Keys are sorted by time.
func NewColor(keys []ColorKey) *Color {
	sorted := make([]ColorKey, len(keys))
	copy(sorted, keys)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	return &Color{keys: sorted}
}

// Keys returns a copy of the keyframes.
func (c *Color) Keys() []ColorKey {
	out := make([]ColorKey, len(c.keys))
	copy(out, c.keys)
	return out
}

// Duration returns the time of the last key.
func (c *Color) Duration() float64 {
	if len(c.keys) == 0 {
		return 0
	}
	return c.keys[len(c.keys)-1].Time
}

// Color samples the gradient at t. An empty gradient is white.
func (c *Color) Color(t float64) pattern.Color {
	n := len(c.keys)
	switch {
	case n == 0:
		return pattern.White
	case t <= c.keys[0].Time:
		return c.keys[0].Color
	case t >= c.keys[n-1].Time:
		return c.keys[n-1].Color
	}

	i := sort.Search(n, func(i int) bool { return c.keys[i].Time > t })
	a, b := c.keys[i-1], c.keys[i]
	span := b.Time - a.Time
	if span <= 0 {
		return b.Color
	}
	return a.Color.Lerp(b.Color, (t-a.Time)/span)
}

// ParseKeys converts [[time, value], ...] pairs into keys.
func ParseKeys(pairs [][]float64) ([]Key, error) {
	keys := make([]Key, 0, len(pairs))
	for i, p := range pairs {
		if len(p) != 2 {
			return nil, fmt.Errorf("key %d: expected [time, value], got %d numbers", i, len(p))
		}
		keys = append(keys, Key{Time: p[0], Value: p[1]})
	}
	return keys, nil
}

// ParseColorKeys converts [[time, r, g, b], ...] or [[time, r, g, b, a], ...] into keys.
func ParseColorKeys(rows [][]float64) ([]ColorKey, error) {
	keys := make([]ColorKey, 0, len(rows))
	for i, r := range rows {
		switch len(r) {
		case 4:
			keys = append(keys, ColorKey{Time: r[0], Color: pattern.RGB(r[1], r[2], r[3])})
		case 5:
			keys = append(keys, ColorKey{Time: r[0], Color: pattern.Color{R: r[1], G: r[2], B: r[3], A: r[4]}})
		default:
			return nil, fmt.Errorf("color key %d: expected [time, r, g, b(, a)], got %d numbers", i, len(r))
		}
	}
	return keys, nil
}
