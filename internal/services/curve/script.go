package curve

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
)

// ErrInvalidScript is returned when a curve script fails to compile.
var ErrInvalidScript = errors.New("invalid curve script")

// Script is a float curve computed by a Lua snippet with `t` in scope.
// A bare expression such as `0.5 + 0.5 * math.sin(t)` is accepted as well as a body
// containing its own return statement.
type Script struct {
	mu       sync.Mutex
	L        *lua.LState
	fn       *lua.LFunction
	source   string
	duration float64
	closed   bool
}

// NewScript compiles source into a curve with the given wrap duration.
func NewScript(source string, duration float64) (*Script, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	libs := []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.MathLibName, lua.OpenMath},
	}
	for _, lib := range libs {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, fmt.Errorf("failed to open lua %s library: %w", lib.name, err)
		}
	}

	body := strings.TrimSpace(source)
	if !strings.Contains(body, "return") {
		body = "return (" + body + ")"
	}

	if err := L.DoString("return function(t)\n" + body + "\nend"); err != nil {
		L.Close()
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	fn, ok := L.Get(-1).(*lua.LFunction)
	L.Pop(1)
	if !ok {
		L.Close()
		return nil, ErrInvalidScript
	}

	return &Script{L: L, fn: fn, source: source, duration: duration}, nil
}

// Source returns the original script text.
func (s *Script) Source() string {
	return s.source
}

// Duration returns the wrap duration.
func (s *Script) Duration() float64 {
	return s.duration
}

// Value runs the script at t. Runtime errors, non-numeric results and a closed script
// yield 1.
func (s *Script) Value(t float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 1
	}

	if err := s.L.CallByParam(lua.P{Fn: s.fn, NRet: 1, Protect: true}, lua.LNumber(t)); err != nil {
		log.Debug().Err(err).Msg("Curve script failed")
		return 1
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)

	n, ok := ret.(lua.LNumber)
	if !ok {
		return 1
	}
	return float64(n)
}

// Close releases the Lua state. It is safe to call more than once.
func (s *Script) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.L.Close()
}
