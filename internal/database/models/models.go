// Package models contains the database model definitions for persisted presets and
// settings.
package models

import (
	"time"
)

// Curve types stored in CurvePreset.Type.
const (
	CurveTypeFloat  = "FLOAT"
	CurveTypeColor  = "COLOR"
	CurveTypeScript = "SCRIPT"
)

// LightPreset is a saved light definition that can be spawned at startup.
// Table: light_presets
type LightPreset struct {
	ID        string  `gorm:"column:id;primaryKey"`
	Name      string  `gorm:"column:name;uniqueIndex"`
	PositionX float64 `gorm:"column:position_x"`
	PositionY float64 `gorm:"column:position_y"`
	PositionZ float64 `gorm:"column:position_z"`
	ColorR    float64 `gorm:"column:color_r"`
	ColorG    float64 `gorm:"column:color_g"`
	ColorB    float64 `gorm:"column:color_b"`
	ColorA    float64 `gorm:"column:color_a"`
	Intensity float64 `gorm:"column:intensity"`
	Radius    float64 `gorm:"column:radius"`

	PatternKind      string  `gorm:"column:pattern_kind;default:STEADY"`
	Speed            float64 `gorm:"column:speed"`
	PhaseOffset      float64 `gorm:"column:phase_offset"`
	MinIntensity     float64 `gorm:"column:min_intensity"`
	MaxIntensity     float64 `gorm:"column:max_intensity"`
	EnableColorShift bool    `gorm:"column:enable_color_shift"`
	CurveID          *string `gorm:"column:curve_id"`
	ColorCurveID     *string `gorm:"column:color_curve_id"`
	SyncGroup        string  `gorm:"column:sync_group;index"`

	// DMX patch; nil Universe means unpatched.
	Universe     *int    `gorm:"column:universe"`
	StartChannel *int    `gorm:"column:start_channel"`
	PatchMode    *string `gorm:"column:patch_mode"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (LightPreset) TableName() string { return "light_presets" }

// ReflectionPreset is a saved reflection probe.
// Table: reflection_presets
type ReflectionPreset struct {
	ID              string    `gorm:"column:id;primaryKey"`
	Name            string    `gorm:"column:name;uniqueIndex"`
	PositionX       float64   `gorm:"column:position_x"`
	PositionY       float64   `gorm:"column:position_y"`
	PositionZ       float64   `gorm:"column:position_z"`
	Radius          float64   `gorm:"column:radius"`
	Intensity       float64   `gorm:"column:intensity"`
	BlendWeight     float64   `gorm:"column:blend_weight"`
	Quality         string    `gorm:"column:quality;default:MEDIUM"`
	FresnelExponent float64   `gorm:"column:fresnel_exponent"`
	BoxProjection   bool      `gorm:"column:box_projection"`
	BoxExtentX      float64   `gorm:"column:box_extent_x"`
	BoxExtentY      float64   `gorm:"column:box_extent_y"`
	BoxExtentZ      float64   `gorm:"column:box_extent_z"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ReflectionPreset) TableName() string { return "reflection_presets" }

// CurvePreset is a named keyframe or script curve.
// Table: curve_presets
type CurvePreset struct {
	ID       string  `gorm:"column:id;primaryKey"`
	Name     string  `gorm:"column:name;uniqueIndex"`
	Type     string  `gorm:"column:type;default:FLOAT"`
	Keys     string  `gorm:"column:keys;default:[]"` // JSON array of [time, value...] rows
	Script   *string `gorm:"column:script"`
	Duration float64 `gorm:"column:duration"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CurvePreset) TableName() string { return "curve_presets" }

// Setting represents a system setting.
// Table: settings
type Setting struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Key       string    `gorm:"column:key;uniqueIndex"`
	Value     string    `gorm:"column:value"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Setting) TableName() string { return "settings" }

// All returns every model for AutoMigrate.
func All() []any {
	return []any{
		&LightPreset{},
		&ReflectionPreset{},
		&CurvePreset{},
		&Setting{},
	}
}
