package light

import "strings"

// PatchMode selects how a light's output is laid out on DMX channels.
type PatchMode string

const (
	// PatchDimmer uses one channel: level.
	PatchDimmer PatchMode = "DIMMER"
	// PatchRGB uses three channels: level-scaled red, green, blue.
	PatchRGB PatchMode = "RGB"
	// PatchRGBI uses four channels: red, green, blue, level.
	PatchRGBI PatchMode = "RGBI"
)

// Patch addresses a light on a DMX universe. Channels are 1-based.
type Patch struct {
	Universe     int       `json:"universe" yaml:"universe"`
	StartChannel int       `json:"startChannel" yaml:"start_channel"`
	Mode         PatchMode `json:"mode" yaml:"mode"`
}

// Footprint returns the number of channels the patch occupies.
func (p Patch) Footprint() int {
	switch p.Mode {
	case PatchRGB:
		return 3
	case PatchRGBI:
		return 4
	default:
		return 1
	}
}

// ParsePatchMode converts a case-insensitive name into a PatchMode.
func ParsePatchMode(s string) (PatchMode, bool) {
	switch PatchMode(strings.ToUpper(strings.TrimSpace(s))) {
	case PatchDimmer, "":
		return PatchDimmer, true
	case PatchRGB:
		return PatchRGB, true
	case PatchRGBI:
		return PatchRGBI, true
	}
	return "", false
}
