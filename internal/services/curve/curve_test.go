package curve

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbernstein/lacylights-patterns/internal/services/pattern"
)

func TestFloat_Interpolates(t *testing.T) {
	c := NewFloat([]Key{{Time: 1, Value: 1}, {Time: 0, Value: 0}, {Time: 2, Value: 0.5}})

	assert.Equal(t, 2.0, c.Duration())
	assert.InDelta(t, 0.0, c.Value(0), 1e-12)
	assert.InDelta(t, 0.5, c.Value(0.5), 1e-12)
	assert.InDelta(t, 1.0, c.Value(1), 1e-12)
	assert.InDelta(t, 0.75, c.Value(1.5), 1e-12)
	assert.Equal(t, 0.0, c.Keys()[0].Time, "keys are sorted")
}

func TestFloat_ClampsOutsideRange(t *testing.T) {
	c := NewFloat([]Key{{Time: 0.5, Value: 0.2}, {Time: 1, Value: 0.9}})
	assert.Equal(t, 0.2, c.Value(-3))
	assert.Equal(t, 0.9, c.Value(40))

	empty := NewFloat(nil)
	assert.Equal(t, 0.0, empty.Value(1))
	assert.Equal(t, 0.0, empty.Duration())
}

func TestFloat_WithCustomPattern(t *testing.T) {
	c := NewFloat([]Key{{Time: 0, Value: 0}, {Time: 4, Value: 1}})
	cfg := pattern.Config{Kind: pattern.KindCustom, MinIntensity: 0, MaxIntensity: 1, CustomCurve: c}

	// 5s wraps to 1s on a 4s curve.
	assert.InDelta(t, 0.25, pattern.EvaluateConfig(cfg, 5, nil), 1e-12)
}

func TestColor_Interpolates(t *testing.T) {
	c := NewColor([]ColorKey{
		{Time: 0, Color: pattern.RGB(1, 0, 0)},
		{Time: 2, Color: pattern.RGB(0, 0, 1)},
	})

	mid := c.Color(1)
	assert.InDelta(t, 0.5, mid.R, 1e-12)
	assert.InDelta(t, 0.5, mid.B, 1e-12)
	assert.Equal(t, pattern.RGB(0, 0, 1), c.Color(9))
	assert.Equal(t, pattern.White, NewColor(nil).Color(1))

	wrapped := pattern.SampleColorCurve(c, 3)
	assert.InDelta(t, 0.5, wrapped.R, 1e-12)
}

func TestParseKeys(t *testing.T) {
	keys, err := ParseKeys([][]float64{{0, 1}, {1, 0}})
	require.NoError(t, err)
	assert.Equal(t, []Key{{0, 1}, {1, 0}}, keys)

	_, err = ParseKeys([][]float64{{0}})
	assert.Error(t, err)

	ck, err := ParseColorKeys([][]float64{{0, 1, 0.5, 0}, {1, 0, 0, 0, 0.5}})
	require.NoError(t, err)
	assert.Equal(t, 1.0, ck[0].Color.A)
	assert.Equal(t, 0.5, ck[1].Color.A)

	_, err = ParseColorKeys([][]float64{{0, 1}})
	assert.Error(t, err)
}

func TestScript_Expression(t *testing.T) {
	s, err := NewScript("0.5 + 0.5 * math.sin(t)", 2*math.Pi)
	require.NoError(t, err)
	defer s.Close()

	assert.InDelta(t, 0.5, s.Value(0), 1e-9)
	assert.InDelta(t, 1.0, s.Value(math.Pi/2), 1e-9)
	assert.InDelta(t, 2*math.Pi, s.Duration(), 1e-12)
}

func TestScript_Body(t *testing.T) {
	s, err := NewScript(`
		if t < 1 then
			return 0
		end
		return 1
	`, 2)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 0.0, s.Value(0.5))
	assert.Equal(t, 1.0, s.Value(1.5))
}

func TestScript_RuntimeFailureFallsBack(t *testing.T) {
	s, err := NewScript(`return nil + t`, 1)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 1.0, s.Value(0.3))

	str, err := NewScript(`"bright"`, 1)
	require.NoError(t, err)
	defer str.Close()
	assert.Equal(t, 1.0, str.Value(0.3))
}

func TestScript_CompileError(t *testing.T) {
	_, err := NewScript("0.5 +* t", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidScript))
}

func TestScript_NoOSLibrary(t *testing.T) {
	s, err := NewScript(`return os.time()`, 1)
	require.NoError(t, err)
	defer s.Close()
	// os is not opened, so the call errors and the fallback applies.
	assert.Equal(t, 1.0, s.Value(0))
}

func TestDefinition_Build(t *testing.T) {
	b, err := Definition{Name: "ramp", Keys: [][]float64{{0, 0}, {2, 1}}}.Build()
	require.NoError(t, err)
	require.NotNil(t, b.Float)
	assert.Nil(t, b.Color)
	assert.InDelta(t, 0.5, b.Float.Value(1), 1e-12)

	b, err = Definition{Name: "sunset", Type: "color", Keys: [][]float64{{0, 1, 0, 0}, {1, 0, 0, 1}}}.Build()
	require.NoError(t, err)
	require.NotNil(t, b.Color)
	assert.InDelta(t, 0.5, b.Color.Color(0.5).B, 1e-12)

	b, err = Definition{Name: "wave", Type: TypeScript, Script: "t * 2", Duration: 3}.Build()
	require.NoError(t, err)
	assert.Equal(t, 3.0, b.Float.Duration())
	assert.InDelta(t, 1.0, b.Float.Value(0.5), 1e-12)
	b.Float.(*Script).Close()
}

func TestDefinition_BuildErrors(t *testing.T) {
	_, err := Definition{Name: "x", Type: "SPLINE"}.Build()
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = Definition{Name: "x", Keys: [][]float64{{0, 1, 2}}}.Build()
	assert.Error(t, err)

	_, err = Definition{Name: "x", Type: TypeScript, Script: "+"}.Build()
	assert.ErrorIs(t, err, ErrInvalidScript)
}

func TestDescribe_RoundTrips(t *testing.T) {
	f := NewFloat([]Key{{Time: 0, Value: 0.2}, {Time: 1, Value: 0.8}})
	d, ok := Describe("f", f)
	require.True(t, ok)
	assert.Equal(t, Definition{Name: "f", Type: TypeFloat, Keys: [][]float64{{0, 0.2}, {1, 0.8}}}, d)

	c := NewColor([]ColorKey{{Time: 0, Color: pattern.RGB(1, 0.5, 0)}})
	d, ok = Describe("c", c)
	require.True(t, ok)
	assert.Equal(t, [][]float64{{0, 1, 0.5, 0, 1}}, d.Keys)

	s, err := NewScript("t", 4)
	require.NoError(t, err)
	defer s.Close()
	d, ok = Describe("s", s)
	require.True(t, ok)
	assert.Equal(t, "t", d.Script)
	assert.Equal(t, 4.0, d.Duration)

	_, ok = Describe("other", 3.0)
	assert.False(t, ok)
}

func TestScript_ClosedFallsBack(t *testing.T) {
	s, err := NewScript("0.25", 1)
	require.NoError(t, err)
	assert.Equal(t, 0.25, s.Value(0))
	s.Close()
	s.Close()
	assert.Equal(t, 1.0, s.Value(0))
}
