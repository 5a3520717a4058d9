// Package api exposes the pattern controller, world and queries over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/lacylights-patterns/internal/database/repositories"
	"github.com/bbernstein/lacylights-patterns/internal/services/controller"
	"github.com/bbernstein/lacylights-patterns/internal/services/curve"
	"github.com/bbernstein/lacylights-patterns/internal/services/dmx"
	"github.com/bbernstein/lacylights-patterns/internal/services/pubsub"
	"github.com/bbernstein/lacylights-patterns/internal/services/scene"
	"github.com/bbernstein/lacylights-patterns/internal/services/world"
)

// errBadRequest marks client input errors.
var errBadRequest = errors.New("bad request")

// Handler serves the HTTP API.
type Handler struct {
	controller *controller.Controller
	world      *world.World
	pubsub     *pubsub.PubSub
	dmx        *dmx.Service
	settings   *repositories.SettingRepository

	version  string
	started  time.Time
	upgrader websocket.Upgrader
}

// Options configures a Handler. PubSub, DMX and Settings may be nil.
type Options struct {
	Controller *controller.Controller
	World      *world.World
	PubSub     *pubsub.PubSub
	DMX        *dmx.Service
	Settings   *repositories.SettingRepository
	Version    string
}

// New creates a Handler.
func New(opts Options) *Handler {
	return &Handler{
		controller: opts.Controller,
		world:      opts.World,
		pubsub:     opts.PubSub,
		dmx:        opts.DMX,
		settings:   opts.Settings,
		version:    opts.Version,
		started:    time.Now(),
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// Routes mounts every endpoint on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.health)
	r.Get("/stats", h.stats)
	r.Get("/state", h.state)

	r.Route("/patterns", func(r chi.Router) {
		r.Get("/", h.listPatterns)
		r.Get("/{kind}/preview", h.previewPattern)
	})

	r.Route("/lights", func(r chi.Router) {
		r.Get("/", h.listLights)
		r.Post("/", h.createLight)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getLight)
			r.Patch("/", h.updateLight)
			r.Delete("/", h.removeLight)
			r.Post("/destroy", h.destroyLight)
			r.Post("/flash", h.flashLight)
			r.Post("/crossfade", h.crossfadeLight)
			r.Post("/preset", h.saveLightPreset)
		})
	})

	r.Route("/reflections", func(r chi.Router) {
		r.Get("/", h.listReflections)
		r.Post("/", h.createReflection)
		r.Delete("/{id}", h.removeReflection)
		r.Post("/{id}/destroy", h.destroyReflection)
		r.Post("/{id}/preset", h.saveReflectionPreset)
	})

	r.Route("/curves", func(r chi.Router) {
		r.Get("/", h.listCurves)
		r.Post("/", h.createCurve)
	})

	r.Route("/query", func(r chi.Router) {
		r.Get("/intensity", h.queryIntensity)
		r.Get("/color", h.queryColor)
		r.Get("/lights", h.queryLights)
		r.Get("/reflection", h.queryReflection)
	})

	r.Post("/flash", h.flashNear)
	r.Get("/groups/{name}", h.getGroup)
	r.Post("/groups/{name}/sync", h.syncGroup)

	r.Put("/global", h.updateGlobal)
	r.Post("/pause", h.pause)
	r.Post("/resume", h.resume)

	r.Route("/dmx", func(r chi.Router) {
		r.Get("/", h.dmxStatus)
		r.Get("/targets", h.dmxTargets)
		r.Put("/broadcast", h.setBroadcast)
		r.Delete("/broadcast", h.disableOutput)
	})

	r.Get("/scene", h.exportScene)
	r.Post("/scene", h.loadScene)
	r.Get("/ws/frames", h.frames)
}

// Router returns a chi router with every endpoint mounted.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, world.ErrLightNotFound),
		errors.Is(err, world.ErrReflectionNotFound),
		errors.Is(err, world.ErrCurveNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, curve.ErrInvalidScript),
		errors.Is(err, curve.ErrUnknownType),
		errors.Is(err, scene.ErrUnknownCurve),
		errors.Is(err, scene.ErrUnknownPattern),
		errors.Is(err, scene.ErrInvalidPatch):
		status = http.StatusBadRequest
	case errors.Is(err, world.ErrNoDatabase), errors.Is(err, errNoOutput):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

func queryFloat(r *http.Request, key string, def float64) (float64, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s must be a finite number", errBadRequest, key)
	}
	return v, nil
}

func queryPoint(r *http.Request) (mgl64.Vec3, error) {
	var p mgl64.Vec3
	for i, key := range []string{"x", "y", "z"} {
		v, err := queryFloat(r, key, 0)
		if err != nil {
			return p, err
		}
		p[i] = v
	}
	return p, nil
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.version,
		"uptime":    time.Since(h.started).Round(time.Second).String(),
	})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(h.controller.Stats() + "\n"))
}

func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.controller.State())
}

func (h *Handler) loadScene(w http.ResponseWriter, r *http.Request) {
	f, err := scene.Parse(r.Body)
	if err != nil {
		if !errors.Is(err, scene.ErrUnknownCurve) && !errors.Is(err, scene.ErrUnknownPattern) && !errors.Is(err, scene.ErrInvalidPatch) {
			err = fmt.Errorf("%w: %v", errBadRequest, err)
		}
		writeError(w, err)
		return
	}
	if r.URL.Query().Get("replace") == "true" {
		h.world.Clear()
	}
	res, err := f.Apply(h.world)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) exportScene(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	if err := scene.Export(h.world).Encode(w); err != nil {
		log.Error().Err(err).Msg("Failed to export scene")
	}
}
