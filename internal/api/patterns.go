package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bbernstein/lacylights-patterns/internal/services/curve"
	"github.com/bbernstein/lacylights-patterns/internal/services/pattern"
)

// Preview sampling limits.
const (
	defaultPreviewSamples = 64
	maxPreviewSamples     = 1024
	defaultPreviewSeconds = 2.0
)

type patternInfo struct {
	Kind        pattern.Kind `json:"kind"`
	DisplayName string       `json:"displayName"`
}

type previewSample struct {
	Time  float64 `json:"t"`
	Value float64 `json:"value"`
}

type previewResponse struct {
	Kind     pattern.Kind    `json:"kind"`
	Duration float64         `json:"duration"`
	Samples  []previewSample `json:"samples"`
}

func (h *Handler) listPatterns(w http.ResponseWriter, r *http.Request) {
	kinds := pattern.Kinds()
	out := make([]patternInfo, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, patternInfo{Kind: k, DisplayName: k.DisplayName()})
	}
	writeJSON(w, http.StatusOK, out)
}

// previewPattern samples a pattern over a time window so clients can draw it.
func (h *Handler) previewPattern(w http.ResponseWriter, r *http.Request) {
	kind, ok := pattern.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, fmt.Errorf("%w: unknown pattern %q", errBadRequest, chi.URLParam(r, "kind")))
		return
	}

	cfg := pattern.DefaultConfig()
	cfg.Kind = kind

	duration, err := queryFloat(r, "duration", defaultPreviewSeconds)
	if err != nil {
		writeError(w, err)
		return
	}
	samples, err := queryFloat(r, "samples", defaultPreviewSamples)
	if err != nil {
		writeError(w, err)
		return
	}
	if cfg.Speed, err = queryFloat(r, "speed", cfg.Speed); err != nil {
		writeError(w, err)
		return
	}
	if cfg.MinIntensity, err = queryFloat(r, "min", cfg.MinIntensity); err != nil {
		writeError(w, err)
		return
	}
	if cfg.MaxIntensity, err = queryFloat(r, "max", cfg.MaxIntensity); err != nil {
		writeError(w, err)
		return
	}
	if name := r.URL.Query().Get("curve"); name != "" {
		if cfg.CustomCurve, err = h.world.Curve(name); err != nil {
			writeError(w, err)
			return
		}
	}
	if duration <= 0 || samples < 2 || samples > maxPreviewSamples {
		writeError(w, fmt.Errorf("%w: duration must be positive and samples in [2, %d]", errBadRequest, maxPreviewSamples))
		return
	}
	cfg = cfg.Clamped()

	n := int(samples)
	resp := previewResponse{Kind: kind, Duration: duration, Samples: make([]previewSample, n)}
	step := duration / float64(n-1)
	for i := range n {
		t := float64(i) * step
		resp.Samples[i] = previewSample{
			Time:  t,
			Value: pattern.EvaluateConfig(cfg, t*cfg.Speed, nil),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) listCurves(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.world.Curves())
}

func (h *Handler) createCurve(w http.ResponseWriter, r *http.Request) {
	var def curve.Definition
	if err := decode(r, &def); err != nil {
		writeError(w, err)
		return
	}
	if def.Name == "" {
		writeError(w, fmt.Errorf("%w: curve name is required", errBadRequest))
		return
	}
	if err := h.world.AddCurve(def); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, def)
}
