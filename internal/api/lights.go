package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/bbernstein/lacylights-patterns/internal/services/fade"
	"github.com/bbernstein/lacylights-patterns/internal/services/light"
	"github.com/bbernstein/lacylights-patterns/internal/services/pattern"
)

// Defaults for omitted light fields on create.
const (
	defaultIntensity = 5000.0
	defaultRadius    = 1000.0
)

// patternRequest describes a pattern change. Omitted fields keep the light's current
// values.
type patternRequest struct {
	Kind         string   `json:"kind"`
	Speed        *float64 `json:"speed"`
	PhaseOffset  *float64 `json:"phaseOffset"`
	MinIntensity *float64 `json:"minIntensity"`
	MaxIntensity *float64 `json:"maxIntensity"`
	Curve        *string  `json:"curve"`
	ColorCurve   *string  `json:"colorCurve"`
	ColorShift   *bool    `json:"colorShift"`
}

// apply overlays the request on base.
func (h *Handler) apply(req *patternRequest, base pattern.Config) (pattern.Config, error) {
	if req == nil {
		return base, nil
	}
	if req.Kind != "" {
		kind, ok := pattern.ParseKind(req.Kind)
		if !ok {
			return base, fmt.Errorf("%w: unknown pattern %q", errBadRequest, req.Kind)
		}
		base.Kind = kind
	}
	if req.Speed != nil {
		base.Speed = *req.Speed
	}
	if req.PhaseOffset != nil {
		base.PhaseOffset = *req.PhaseOffset
	}
	if req.MinIntensity != nil {
		base.MinIntensity = *req.MinIntensity
	}
	if req.MaxIntensity != nil {
		base.MaxIntensity = *req.MaxIntensity
	}
	if req.ColorShift != nil {
		base.EnableColorShift = *req.ColorShift
	}
	if req.Curve != nil {
		base.CustomCurve = nil
		if *req.Curve != "" {
			c, err := h.world.Curve(*req.Curve)
			if err != nil {
				return base, fmt.Errorf("%w: curve %q", err, *req.Curve)
			}
			base.CustomCurve = c
		}
	}
	if req.ColorCurve != nil {
		base.ColorCurve = nil
		if *req.ColorCurve != "" {
			c, err := h.world.ColorCurve(*req.ColorCurve)
			if err != nil {
				return base, fmt.Errorf("%w: color curve %q", err, *req.ColorCurve)
			}
			base.ColorCurve = c
		}
	}
	return base, nil
}

type createLightRequest struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Position  mgl64.Vec3      `json:"position"`
	Color     *pattern.Color  `json:"color"`
	Intensity *float64        `json:"intensity"`
	Radius    *float64        `json:"radius"`
	Pattern   *patternRequest `json:"pattern"`
	SyncGroup string          `json:"syncGroup"`
	Patch     *light.Patch    `json:"patch"`
}

func (h *Handler) listLights(w http.ResponseWriter, r *http.Request) {
	lights := h.world.Lights()
	out := make([]light.Snapshot, 0, len(lights))
	for _, l := range lights {
		out = append(out, l.Snapshot())
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createLight(w http.ResponseWriter, r *http.Request) {
	var req createLightRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	cfg, err := h.apply(req.Pattern, pattern.DefaultConfig())
	if err != nil {
		writeError(w, err)
		return
	}

	opts := light.Options{
		ID:        req.ID,
		Name:      req.Name,
		Position:  req.Position,
		Color:     pattern.White,
		Intensity: defaultIntensity,
		Radius:    defaultRadius,
		Pattern:   cfg,
		SyncGroup: req.SyncGroup,
	}
	if req.Color != nil {
		opts.Color = *req.Color
	}
	if req.Intensity != nil {
		opts.Intensity = *req.Intensity
	}
	if req.Radius != nil {
		opts.Radius = *req.Radius
	}
	if req.Patch != nil {
		patch, err := validPatch(*req.Patch)
		if err != nil {
			writeError(w, err)
			return
		}
		opts.Patch = &patch
	}

	l := h.world.SpawnLight(opts)
	writeJSON(w, http.StatusCreated, l.Snapshot())
}

func validPatch(p light.Patch) (light.Patch, error) {
	mode, ok := light.ParsePatchMode(string(p.Mode))
	if !ok || p.Universe < 1 || p.StartChannel < 1 {
		return p, fmt.Errorf("%w: invalid patch", errBadRequest)
	}
	p.Mode = mode
	return p, nil
}

func (h *Handler) getLight(w http.ResponseWriter, r *http.Request) {
	l, err := h.world.Light(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l.Snapshot())
}

type updateLightRequest struct {
	Position  *mgl64.Vec3     `json:"position"`
	Color     *pattern.Color  `json:"color"`
	Intensity *float64        `json:"intensity"`
	Radius    *float64        `json:"radius"`
	Pattern   *patternRequest `json:"pattern"`
	Speed     *float64        `json:"speed"`
	SyncGroup *string         `json:"syncGroup"`
	Patch     *light.Patch    `json:"patch"`
	Unpatch   bool            `json:"unpatch"`
}

func (h *Handler) updateLight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	l, err := h.world.Light(id)
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateLightRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	// Validate everything before changing anything.
	var cfg pattern.Config
	if req.Pattern != nil {
		if cfg, err = h.apply(req.Pattern, l.Pattern()); err != nil {
			writeError(w, err)
			return
		}
	}
	var patch light.Patch
	if req.Patch != nil {
		if patch, err = validPatch(*req.Patch); err != nil {
			writeError(w, err)
			return
		}
	}

	if req.Position != nil {
		_ = h.world.MoveLight(id, *req.Position)
	}
	if req.Color != nil {
		l.SetBaseColor(*req.Color)
	}
	if req.Intensity != nil {
		l.SetBaseIntensity(*req.Intensity)
	}
	if req.Radius != nil {
		l.SetRadius(*req.Radius)
	}
	if req.Pattern != nil {
		_ = h.world.SetLightPattern(id, cfg)
	}
	if req.Speed != nil {
		l.SetSpeed(*req.Speed)
	}
	if req.SyncGroup != nil {
		_ = h.world.SetSyncGroup(id, *req.SyncGroup)
	}
	switch {
	case req.Unpatch:
		l.SetPatch(nil)
	case req.Patch != nil:
		l.SetPatch(&patch)
	}

	writeJSON(w, http.StatusOK, l.Snapshot())
}

func (h *Handler) removeLight(w http.ResponseWriter, r *http.Request) {
	if err := h.world.RemoveLight(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) destroyLight(w http.ResponseWriter, r *http.Request) {
	if err := h.world.DestroyLight(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type flashRequest struct {
	Duration   float64 `json:"duration"`
	Multiplier float64 `json:"multiplier"`
}

func (h *Handler) flashLight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req flashRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.world.FlashLight(id, req.Duration, req.Multiplier); err != nil {
		writeError(w, err)
		return
	}
	l, err := h.world.Light(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l.Snapshot())
}

type crossfadeRequest struct {
	Pattern  patternRequest `json:"pattern"`
	Duration float64        `json:"duration"`
	Easing   string         `json:"easing"`
}

func (h *Handler) crossfadeLight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	l, err := h.world.Light(id)
	if err != nil {
		writeError(w, err)
		return
	}
	var req crossfadeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	easing, ok := fade.ParseEasing(req.Easing)
	if !ok {
		writeError(w, fmt.Errorf("%w: unknown easing %q", errBadRequest, req.Easing))
		return
	}
	cfg, err := h.apply(&req.Pattern, l.Pattern())
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.world.CrossfadeLight(id, cfg, req.Duration, easing); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l.Snapshot())
}

func (h *Handler) saveLightPreset(w http.ResponseWriter, r *http.Request) {
	preset, err := h.world.SavePreset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, preset)
}

type createReflectionRequest struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Position        mgl64.Vec3 `json:"position"`
	Radius          *float64   `json:"radius"`
	Intensity       *float64   `json:"intensity"`
	BlendWeight     *float64   `json:"blendWeight"`
	Quality         string     `json:"quality"`
	FresnelExponent float64    `json:"fresnelExponent"`
	BoxProjection   bool       `json:"boxProjection"`
	BoxExtent       mgl64.Vec3 `json:"boxExtent"`
}

func (h *Handler) listReflections(w http.ResponseWriter, r *http.Request) {
	reflections := h.world.Reflections()
	out := make([]light.ReflectionSnapshot, 0, len(reflections))
	for _, rf := range reflections {
		out = append(out, rf.Snapshot())
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createReflection(w http.ResponseWriter, r *http.Request) {
	var req createReflectionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	quality := light.QualityMedium
	if req.Quality != "" {
		q, ok := light.ParseQuality(req.Quality)
		if !ok {
			writeError(w, fmt.Errorf("%w: unknown quality %q", errBadRequest, req.Quality))
			return
		}
		quality = q
	}

	opts := light.ReflectionOptions{
		ID:              req.ID,
		Name:            req.Name,
		Position:        req.Position,
		Radius:          defaultRadius,
		Intensity:       1,
		BlendWeight:     1,
		Quality:         quality,
		FresnelExponent: req.FresnelExponent,
		BoxProjection:   req.BoxProjection,
		BoxExtent:       req.BoxExtent,
	}
	if req.Radius != nil {
		opts.Radius = *req.Radius
	}
	if req.Intensity != nil {
		opts.Intensity = *req.Intensity
	}
	if req.BlendWeight != nil {
		opts.BlendWeight = *req.BlendWeight
	}

	rf := h.world.SpawnReflection(opts)
	writeJSON(w, http.StatusCreated, rf.Snapshot())
}

func (h *Handler) removeReflection(w http.ResponseWriter, r *http.Request) {
	if err := h.world.RemoveReflection(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) destroyReflection(w http.ResponseWriter, r *http.Request) {
	if err := h.world.DestroyReflection(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) saveReflectionPreset(w http.ResponseWriter, r *http.Request) {
	preset, err := h.world.SaveReflectionPreset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, preset)
}
