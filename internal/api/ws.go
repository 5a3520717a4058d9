package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/lacylights-patterns/internal/services/pubsub"
)

const (
	wsWriteWait  = 5 * time.Second
	wsPingPeriod = 10 * time.Second
	wsBuffer     = 8
)

// streamMessage wraps every event sent to a websocket client.
type streamMessage struct {
	Type pubsub.Topic `json:"type"`
	Data any          `json:"data"`
}

var streamTopics = map[string]pubsub.Topic{
	"frames": pubsub.TopicLightFrame,
	"stats":  pubsub.TopicStats,
	"flash":  pubsub.TopicFlash,
	"state":  pubsub.TopicGlobalState,
}

// frames streams engine events to a websocket client. The topics query parameter is a
// comma separated subset of frames, stats, flash and state; it defaults to frames.
// Slow clients miss messages rather than blocking the engine.
func (h *Handler) frames(w http.ResponseWriter, r *http.Request) {
	topics := []pubsub.Topic{pubsub.TopicLightFrame}
	if raw := r.URL.Query().Get("topics"); raw != "" {
		topics = topics[:0]
		for _, name := range strings.Split(raw, ",") {
			t, ok := streamTopics[strings.TrimSpace(strings.ToLower(name))]
			if !ok {
				http.Error(w, "unknown topic "+name, http.StatusBadRequest)
				return
			}
			topics = append(topics, t)
		}
	}
	if h.pubsub == nil {
		http.Error(w, "streaming unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	session := uuid.NewString()
	log.Debug().Str("session", session).Int("topics", len(topics)).Msg("Stream client connected")

	// Fan every subscription into one channel so only this goroutine writes.
	out := make(chan streamMessage, wsBuffer)
	done := make(chan struct{})
	subs := make([]*pubsub.Subscriber, 0, len(topics))
	for _, t := range topics {
		sub := h.pubsub.Subscribe(t, "", wsBuffer)
		subs = append(subs, sub)
		go func(sub *pubsub.Subscriber) {
			for msg := range sub.Channel {
				select {
				case out <- streamMessage{Type: sub.Topic, Data: msg}:
				case <-done:
					return
				default:
				}
			}
		}(sub)
	}

	// Reader: detect client close.
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer func() {
		ping.Stop()
		for _, sub := range subs {
			h.pubsub.Unsubscribe(sub)
		}
		_ = conn.Close()
		log.Debug().Str("session", session).Msg("Stream client disconnected")
	}()

	for {
		select {
		case <-done:
			return
		case msg := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}
