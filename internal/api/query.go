package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/bbernstein/lacylights-patterns/internal/services/light"
	"github.com/bbernstein/lacylights-patterns/internal/services/pattern"
)

type intensityResponse struct {
	Point     mgl64.Vec3 `json:"point"`
	Intensity float64    `json:"intensity"`
}

type colorResponse struct {
	Point mgl64.Vec3    `json:"point"`
	Color pattern.Color `json:"color"`
}

type reflectionResponse struct {
	Point      mgl64.Vec3                `json:"point"`
	Reflection *light.ReflectionSnapshot `json:"reflection"`
	Intensity  float64                   `json:"intensity"`
}

func (h *Handler) queryIntensity(w http.ResponseWriter, r *http.Request) {
	p, err := queryPoint(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, intensityResponse{Point: p, Intensity: h.controller.QueryIntensityAt(p)})
}

func (h *Handler) queryColor(w http.ResponseWriter, r *http.Request) {
	p, err := queryPoint(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, colorResponse{Point: p, Color: h.controller.QueryColorAt(p)})
}

func (h *Handler) queryLights(w http.ResponseWriter, r *http.Request) {
	p, err := queryPoint(r)
	if err != nil {
		writeError(w, err)
		return
	}
	radius, err := queryFloat(r, "radius", 0)
	if err != nil {
		writeError(w, err)
		return
	}
	lights := h.controller.QueryLightsNear(p, radius)
	out := make([]light.Snapshot, 0, len(lights))
	for _, l := range lights {
		out = append(out, l.Snapshot())
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) queryReflection(w http.ResponseWriter, r *http.Request) {
	p, err := queryPoint(r)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := reflectionResponse{Point: p}
	if rf := h.controller.BestReflectionAt(p); rf != nil {
		s := rf.Snapshot()
		resp.Reflection = &s
		resp.Intensity = rf.IntensityAt(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

type flashNearRequest struct {
	Point     mgl64.Vec3 `json:"point"`
	Radius    float64    `json:"radius"`
	Duration  float64    `json:"duration"`
	Intensity float64    `json:"intensity"`
}

func (h *Handler) flashNear(w http.ResponseWriter, r *http.Request) {
	var req flashNearRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Radius < 0 {
		writeError(w, fmt.Errorf("%w: radius must not be negative", errBadRequest))
		return
	}
	n := h.world.FlashNear(req.Point, req.Radius, req.Duration, req.Intensity)
	writeJSON(w, http.StatusOK, map[string]int{"flashed": n})
}

type groupResponse struct {
	Name   string           `json:"name"`
	Lights []light.Snapshot `json:"lights"`
}

func (h *Handler) getGroup(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	lights := h.world.Registry().LightsInSyncGroup(name)
	resp := groupResponse{Name: name, Lights: make([]light.Snapshot, 0, len(lights))}
	for _, l := range lights {
		resp.Lights = append(resp.Lights, l.Snapshot())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) syncGroup(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	n := h.controller.SyncGroup(name)
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "synced": n})
}
