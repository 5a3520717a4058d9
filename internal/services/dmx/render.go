package dmx

import (
	"github.com/bbernstein/lacylights-patterns/internal/services/light"
	"github.com/bbernstein/lacylights-patterns/internal/services/pattern"
)

// RenderFrames writes every patched snapshot into its universe. Level is the light's
// intensity relative to its base intensity.
func (s *Service) RenderFrames(frames []light.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, f := range frames {
		if f.Patch == nil {
			continue
		}
		for i, v := range channelValues(f) {
			if s.setLocked(f.Patch.Universe, f.Patch.StartChannel+i, v) {
				changed = true
			}
		}
	}
	if changed {
		s.markActive()
	}
}

// channelValues lays out a snapshot's output for its patch mode.
func channelValues(f light.Snapshot) []byte {
	level := f.Level()
	c := f.Color

	switch f.Patch.Mode {
	case light.PatchRGB:
		return []byte{
			pattern.Byte(c.R * level),
			pattern.Byte(c.G * level),
			pattern.Byte(c.B * level),
		}
	case light.PatchRGBI:
		return []byte{
			pattern.Byte(c.R),
			pattern.Byte(c.G),
			pattern.Byte(c.B),
			pattern.Byte(level),
		}
	default:
		return []byte{pattern.Byte(level)}
	}
}
