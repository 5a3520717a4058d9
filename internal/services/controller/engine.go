package controller

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bbernstein/lacylights-patterns/internal/services/light"
	"github.com/bbernstein/lacylights-patterns/internal/services/pubsub"
	"github.com/bbernstein/lacylights-patterns/internal/services/registry"
)

// Frame is the output of one engine step.
type Frame struct {
	Sequence   uint64           `json:"sequence"`
	MasterTime float64          `json:"masterTime"`
	Running    bool             `json:"running"`
	Lights     []light.Snapshot `json:"lights"`
}

// StatsEvent is published on the stats topic.
type StatsEvent struct {
	registry.Stats
	MasterTime float64 `json:"masterTime"`
}

// Renderer receives every frame's snapshots, typically a DMX output.
type Renderer interface {
	RenderFrames(frames []light.Snapshot)
}

// Engine drives a controller from a wall-clock ticker.
type Engine struct {
	mu sync.Mutex

	controller *Controller
	renderer   Renderer
	pubsub     *pubsub.PubSub

	sequence   uint64
	sinceStats time.Duration

	stopChan chan struct{}
	done     chan struct{}
	running  bool

	updateRate    time.Duration
	statsInterval time.Duration
}

// NewEngine creates an engine. renderer and ps may be nil.
func NewEngine(c *Controller, renderer Renderer, ps *pubsub.PubSub) *Engine {
	return &Engine{
		controller:    c,
		renderer:      renderer,
		pubsub:        ps,
		updateRate:    time.Second / 60,
		statsInterval: time.Second,
	}
}

// SetTickRate sets the frame rate in Hz. Call before Start.
func (e *Engine) SetTickRate(hz int) {
	if hz <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.updateRate = time.Second / time.Duration(hz)
}

// Start starts the update loop.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.stopChan = make(chan struct{})
	e.done = make(chan struct{})
	rate := e.updateRate
	e.mu.Unlock()

	log.Info().Dur("interval", rate).Msg("Pattern engine started")
	go e.updateLoop(rate)
}

// Stop stops the update loop and waits for the current frame to finish.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	close(e.stopChan)
	done := e.done
	e.mu.Unlock()

	<-done
	log.Info().Msg("Pattern engine stopped")
}

// IsRunning reports whether the update loop is active.
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Engine) updateLoop(rate time.Duration) {
	defer close(e.done)

	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-e.stopChan:
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			e.Step(dt)
		}
	}
}

// Step runs one frame: tick the controller by dt, snapshot every live light, render and
// publish. It returns the frame.
func (e *Engine) Step(dt time.Duration) Frame {
	e.controller.Tick(dt.Seconds())

	lights := e.controller.Registry().Lights()
	snaps := make([]light.Snapshot, 0, len(lights))
	for _, l := range lights {
		snaps = append(snaps, l.Snapshot())
	}

	e.mu.Lock()
	e.sequence++
	seq := e.sequence
	e.sinceStats += dt
	publishStats := e.sinceStats >= e.statsInterval
	if publishStats {
		e.sinceStats = 0
	}
	e.mu.Unlock()

	frame := Frame{
		Sequence:   seq,
		MasterTime: e.controller.MasterTime(),
		Running:    e.controller.IsRunning(),
		Lights:     snaps,
	}

	if e.renderer != nil {
		e.renderer.RenderFrames(snaps)
	}
	if e.pubsub != nil {
		e.pubsub.PublishAll(pubsub.TopicLightFrame, frame)
		if publishStats {
			e.pubsub.PublishAll(pubsub.TopicStats, StatsEvent{
				Stats:      e.controller.Registry().Counts(),
				MasterTime: frame.MasterTime,
			})
		}
	}
	return frame
}
