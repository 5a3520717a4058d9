package api

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/bbernstein/lacylights-patterns/internal/database/repositories"
	"github.com/bbernstein/lacylights-patterns/internal/services/pubsub"
)

type globalRequest struct {
	Intensity *float64 `json:"intensity"`
	Speed     *float64 `json:"speed"`
	Enabled   *bool    `json:"enabled"`
}

// RestoreGlobals applies persisted global settings to the controller. Missing settings
// keep the controller's current values.
func (h *Handler) RestoreGlobals(ctx context.Context) error {
	if h.settings == nil {
		return nil
	}
	intensity, err := h.settings.GetFloat(ctx, repositories.SettingGlobalIntensity, h.controller.GlobalIntensity())
	if err != nil {
		return err
	}
	speed, err := h.settings.GetFloat(ctx, repositories.SettingGlobalSpeed, h.controller.GlobalSpeed())
	if err != nil {
		return err
	}
	enabled, err := h.settings.GetBool(ctx, repositories.SettingEnabled, h.controller.State().Enabled)
	if err != nil {
		return err
	}
	h.controller.SetGlobalIntensity(intensity)
	h.controller.SetGlobalSpeed(speed)
	h.controller.SetEnabled(enabled)
	return nil
}

func (h *Handler) updateGlobal(w http.ResponseWriter, r *http.Request) {
	var req globalRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.Intensity != nil {
		h.controller.SetGlobalIntensity(*req.Intensity)
	}
	if req.Speed != nil {
		h.controller.SetGlobalSpeed(*req.Speed)
	}
	if req.Enabled != nil {
		h.controller.SetEnabled(*req.Enabled)
	}

	if err := h.persistGlobals(r.Context(), req); err != nil {
		writeError(w, err)
		return
	}
	h.publishState(w)
}

func (h *Handler) persistGlobals(ctx context.Context, req globalRequest) error {
	if h.settings == nil {
		return nil
	}
	// Store the clamped values the controller actually applied.
	if req.Intensity != nil {
		if err := h.settings.SetFloat(ctx, repositories.SettingGlobalIntensity, h.controller.GlobalIntensity()); err != nil {
			return err
		}
	}
	if req.Speed != nil {
		if err := h.settings.SetFloat(ctx, repositories.SettingGlobalSpeed, h.controller.GlobalSpeed()); err != nil {
			return err
		}
	}
	if req.Enabled != nil {
		if err := h.settings.SetBool(ctx, repositories.SettingEnabled, *req.Enabled); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) pause(w http.ResponseWriter, r *http.Request) {
	h.controller.PauseAll()
	log.Info().Msg("Patterns paused")
	h.publishState(w)
}

func (h *Handler) resume(w http.ResponseWriter, r *http.Request) {
	h.controller.ResumeAll()
	log.Info().Msg("Patterns resumed")
	h.publishState(w)
}

// publishState broadcasts the controller state and returns it to the caller.
func (h *Handler) publishState(w http.ResponseWriter) {
	state := h.controller.State()
	if h.pubsub != nil {
		h.pubsub.PublishAll(pubsub.TopicGlobalState, state)
	}
	writeJSON(w, http.StatusOK, state)
}
