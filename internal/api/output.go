package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/bbernstein/lacylights-patterns/internal/database/repositories"
	"github.com/bbernstein/lacylights-patterns/internal/services/network"
)

// errNoOutput is returned by DMX endpoints when the server runs without a DMX service.
var errNoOutput = errors.New("DMX output not configured")

type broadcastRequest struct {
	Address string `json:"address"`
}

// RestoreOutput re-applies a saved Art-Net broadcast address.
func (h *Handler) RestoreOutput(ctx context.Context) error {
	if h.settings == nil || h.dmx == nil {
		return nil
	}
	saved, err := h.settings.FindByKey(ctx, repositories.SettingBroadcastAddr)
	if err != nil || saved == nil || saved.Value == "" {
		return err
	}
	log.Info().Str("address", saved.Value).Msg("Loading saved Art-Net broadcast address")
	return h.dmx.SetBroadcastAddress(saved.Value)
}

func (h *Handler) dmxStatus(w http.ResponseWriter, r *http.Request) {
	if h.dmx == nil {
		writeError(w, errNoOutput)
		return
	}
	writeJSON(w, http.StatusOK, h.dmx.Status())
}

func (h *Handler) dmxTargets(w http.ResponseWriter, r *http.Request) {
	targets, err := network.Targets()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, targets)
}

func (h *Handler) setBroadcast(w http.ResponseWriter, r *http.Request) {
	if h.dmx == nil {
		writeError(w, errNoOutput)
		return
	}
	var req broadcastRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Address == "" {
		writeError(w, fmt.Errorf("%w: address is required", errBadRequest))
		return
	}
	if err := h.dmx.SetBroadcastAddress(req.Address); err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if h.settings != nil {
		if _, err := h.settings.Upsert(r.Context(), repositories.SettingBroadcastAddr, req.Address); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, h.dmx.Status())
}

func (h *Handler) disableOutput(w http.ResponseWriter, r *http.Request) {
	if h.dmx == nil {
		writeError(w, errNoOutput)
		return
	}
	h.dmx.DisableOutput()
	if h.settings != nil {
		if err := h.settings.Delete(r.Context(), repositories.SettingBroadcastAddr); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, h.dmx.Status())
}
