package world

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/lacylights-patterns/internal/database/models"
	"github.com/bbernstein/lacylights-patterns/internal/services/curve"
	"github.com/bbernstein/lacylights-patterns/internal/services/light"
	"github.com/bbernstein/lacylights-patterns/internal/services/pattern"
)

// LoadResult counts what LoadPresets spawned.
type LoadResult struct {
	Curves      int `json:"curves"`
	Lights      int `json:"lights"`
	Reflections int `json:"reflections"`
}

// LoadPresets builds every stored curve and spawns every stored light and reflection.
// A curve that fails to build is logged and skipped; lights referencing it fall back to
// their pattern without a curve.
func (w *World) LoadPresets(ctx context.Context) (LoadResult, error) {
	w.mu.RLock()
	repos := w.repos
	w.mu.RUnlock()

	var res LoadResult
	if repos.Lights == nil && repos.Reflections == nil && repos.Curves == nil {
		return res, ErrNoDatabase
	}

	curveNames := make(map[string]string)
	if repos.Curves != nil {
		curves, err := repos.Curves.FindAll(ctx)
		if err != nil {
			return res, fmt.Errorf("failed to load curves: %w", err)
		}
		for _, c := range curves {
			def, err := curveDefinition(c)
			if err == nil {
				err = w.AddCurve(def)
			}
			if err != nil {
				log.Warn().Err(err).Str("curve", c.Name).Msg("Skipping curve preset")
				continue
			}
			curveNames[c.ID] = c.Name
			res.Curves++
		}
	}

	if repos.Lights != nil {
		presets, err := repos.Lights.FindAll(ctx)
		if err != nil {
			return res, fmt.Errorf("failed to load light presets: %w", err)
		}
		for _, p := range presets {
			w.SpawnLight(w.lightOptions(p, curveNames))
			res.Lights++
		}
	}

	if repos.Reflections != nil {
		presets, err := repos.Reflections.FindAll(ctx)
		if err != nil {
			return res, fmt.Errorf("failed to load reflection presets: %w", err)
		}
		for _, p := range presets {
			w.SpawnReflection(reflectionOptions(p))
			res.Reflections++
		}
	}

	log.Info().
		Int("curves", res.Curves).
		Int("lights", res.Lights).
		Int("reflections", res.Reflections).
		Msg("Loaded pattern presets")
	return res, nil
}

// SavePreset stores a live light as a preset keyed by its name, creating or updating
// it. Named curves the light uses are stored too.
func (w *World) SavePreset(ctx context.Context, id string) (*models.LightPreset, error) {
	w.mu.RLock()
	repos := w.repos
	w.mu.RUnlock()
	if repos.Lights == nil {
		return nil, ErrNoDatabase
	}

	l, err := w.Light(id)
	if err != nil {
		return nil, err
	}
	snap := l.Snapshot()
	cfg := l.Pattern()

	name := snap.Name
	if name == "" {
		name = snap.ID
	}

	preset, err := repos.Lights.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	isNew := preset == nil
	if isNew {
		preset = &models.LightPreset{Name: name}
	}

	color := l.BaseColor()
	preset.PositionX, preset.PositionY, preset.PositionZ = snap.Position[0], snap.Position[1], snap.Position[2]
	preset.ColorR, preset.ColorG, preset.ColorB, preset.ColorA = color.R, color.G, color.B, color.A
	preset.Intensity = snap.BaseIntensity
	preset.Radius = snap.Radius
	preset.PatternKind = string(cfg.Kind)
	preset.Speed = cfg.Speed
	preset.PhaseOffset = cfg.PhaseOffset
	preset.MinIntensity = cfg.MinIntensity
	preset.MaxIntensity = cfg.MaxIntensity
	preset.EnableColorShift = cfg.EnableColorShift
	preset.SyncGroup = snap.SyncGroup

	preset.CurveID, err = w.saveCurve(ctx, cfg.CustomCurve)
	if err != nil {
		return nil, err
	}
	preset.ColorCurveID, err = w.saveCurve(ctx, cfg.ColorCurve)
	if err != nil {
		return nil, err
	}

	preset.Universe, preset.StartChannel, preset.PatchMode = nil, nil, nil
	if p := snap.Patch; p != nil {
		universe, start, mode := p.Universe, p.StartChannel, string(p.Mode)
		preset.Universe, preset.StartChannel, preset.PatchMode = &universe, &start, &mode
	}

	if isNew {
		err = repos.Lights.Create(ctx, preset)
	} else {
		err = repos.Lights.Update(ctx, preset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save light preset: %w", err)
	}
	return preset, nil
}

// SaveReflectionPreset stores a live probe as a preset keyed by its name.
func (w *World) SaveReflectionPreset(ctx context.Context, id string) (*models.ReflectionPreset, error) {
	w.mu.RLock()
	repos := w.repos
	w.mu.RUnlock()
	if repos.Reflections == nil {
		return nil, ErrNoDatabase
	}

	rf, err := w.Reflection(id)
	if err != nil {
		return nil, err
	}
	snap := rf.Snapshot()
	name := snap.Name
	if name == "" {
		name = snap.ID
	}

	preset, err := repos.Reflections.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	isNew := preset == nil
	if isNew {
		preset = &models.ReflectionPreset{Name: name}
	}
	preset.PositionX, preset.PositionY, preset.PositionZ = snap.Position[0], snap.Position[1], snap.Position[2]
	preset.Radius = snap.Radius
	preset.Intensity = snap.Intensity
	preset.BlendWeight = snap.BlendWeight
	preset.Quality = string(snap.Quality)
	preset.FresnelExponent = snap.FresnelExponent
	preset.BoxProjection = snap.BoxProjection
	preset.BoxExtentX, preset.BoxExtentY, preset.BoxExtentZ = snap.BoxExtent[0], snap.BoxExtent[1], snap.BoxExtent[2]

	if isNew {
		err = repos.Reflections.Create(ctx, preset)
	} else {
		err = repos.Reflections.Update(ctx, preset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save reflection preset: %w", err)
	}
	return preset, nil
}

// saveCurve stores a named world curve and returns its preset ID. Curves that were
// never added to the world have no name and are not stored.
func (w *World) saveCurve(ctx context.Context, c any) (*string, error) {
	if c == nil {
		return nil, nil
	}
	name, ok := w.CurveName(c)
	if !ok {
		return nil, nil
	}
	w.mu.RLock()
	repo := w.repos.Curves
	w.mu.RUnlock()
	if repo == nil {
		return nil, nil
	}

	def, ok := curve.Describe(name, c)
	if !ok {
		return nil, nil
	}
	keys, err := json.Marshal(def.Keys)
	if err != nil {
		return nil, err
	}
	if def.Keys == nil {
		keys = []byte("[]")
	}

	existing, err := repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	preset := existing
	if preset == nil {
		preset = &models.CurvePreset{Name: name}
	}
	preset.Type = def.Type
	preset.Keys = string(keys)
	preset.Duration = def.Duration
	preset.Script = nil
	if def.Script != "" {
		src := def.Script
		preset.Script = &src
	}

	if existing == nil {
		err = repo.Create(ctx, preset)
	} else {
		err = repo.Update(ctx, preset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save curve %q: %w", name, err)
	}
	return &preset.ID, nil
}

func curveDefinition(c models.CurvePreset) (curve.Definition, error) {
	def := curve.Definition{Name: c.Name, Type: c.Type, Duration: c.Duration}
	if c.Script != nil {
		def.Script = *c.Script
	}
	if c.Keys != "" {
		if err := json.Unmarshal([]byte(c.Keys), &def.Keys); err != nil {
			return def, fmt.Errorf("curve %q: invalid keys: %w", c.Name, err)
		}
	}
	return def, nil
}

func (w *World) lightOptions(p models.LightPreset, curveNames map[string]string) light.Options {
	kind, ok := pattern.ParseKind(p.PatternKind)
	if !ok {
		kind = pattern.KindSteady
	}
	cfg := pattern.Config{
		Kind:             kind,
		Speed:            p.Speed,
		PhaseOffset:      p.PhaseOffset,
		MinIntensity:     p.MinIntensity,
		MaxIntensity:     p.MaxIntensity,
		EnableColorShift: p.EnableColorShift,
	}
	if p.CurveID != nil {
		if c, err := w.Curve(curveNames[*p.CurveID]); err == nil {
			cfg.CustomCurve = c
		}
	}
	if p.ColorCurveID != nil {
		if c, err := w.ColorCurve(curveNames[*p.ColorCurveID]); err == nil {
			cfg.ColorCurve = c
		}
	}

	opts := light.Options{
		Name:      p.Name,
		Position:  mgl64.Vec3{p.PositionX, p.PositionY, p.PositionZ},
		Color:     pattern.Color{R: p.ColorR, G: p.ColorG, B: p.ColorB, A: p.ColorA},
		Intensity: p.Intensity,
		Radius:    p.Radius,
		Pattern:   cfg,
		SyncGroup: p.SyncGroup,
	}
	if p.Universe != nil && p.StartChannel != nil {
		mode := light.PatchDimmer
		if p.PatchMode != nil {
			if m, ok := light.ParsePatchMode(*p.PatchMode); ok {
				mode = m
			}
		}
		opts.Patch = &light.Patch{Universe: *p.Universe, StartChannel: *p.StartChannel, Mode: mode}
	}
	return opts
}

func reflectionOptions(p models.ReflectionPreset) light.ReflectionOptions {
	return light.ReflectionOptions{
		Name:            p.Name,
		Position:        mgl64.Vec3{p.PositionX, p.PositionY, p.PositionZ},
		Radius:          p.Radius,
		Intensity:       p.Intensity,
		BlendWeight:     p.BlendWeight,
		Quality:         light.Quality(p.Quality),
		FresnelExponent: p.FresnelExponent,
		BoxProjection:   p.BoxProjection,
		BoxExtent:       mgl64.Vec3{p.BoxExtentX, p.BoxExtentY, p.BoxExtentZ},
	}
}
