// Package dmx renders light frames into DMX universes and transmits them over Art-Net.
package dmx

import (
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bbernstein/lacylights-patterns/pkg/artnet"
)

const (
	// UniverseSize is the number of channels per DMX universe.
	UniverseSize = 512
	// MaxUniverses is the maximum number of supported universes.
	MaxUniverses = 16
)

// Service holds DMX universes and drives Art-Net output.
type Service struct {
	mu sync.RWMutex

	// 1-indexed universes, 0-indexed channel slices
	universes map[int][]byte

	enabled          bool
	broadcastAddr    string
	port             int
	refreshRateHz    int
	idleRateHz       int
	highRateDuration time.Duration

	// Adaptive transmission rate state
	currentRate      int
	isInHighRateMode bool
	lastChangeTime   time.Time

	isDirty        bool
	dirtyUniverses map[int]bool

	// Art-Net sequence number, wraps at 255
	sequence byte

	conn *net.UDPConn

	stopChan chan struct{}
	running  bool
}

// Config holds DMX service configuration.
type Config struct {
	Enabled          bool
	BroadcastAddr    string
	Port             int
	UniverseCount    int
	RefreshRateHz    int
	IdleRateHz       int
	HighRateDuration time.Duration
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() Config {
	return Config{
		Enabled:          false,
		BroadcastAddr:    "255.255.255.255",
		Port:             artnet.DefaultPort,
		UniverseCount:    4,
		RefreshRateHz:    44,
		IdleRateHz:       1,
		HighRateDuration: 2 * time.Second,
	}
}

// NewService creates a DMX service. Zero config values fall back to defaults.
func NewService(cfg Config) *Service {
	def := DefaultConfig()
	if cfg.RefreshRateHz <= 0 {
		cfg.RefreshRateHz = def.RefreshRateHz
	}
	if cfg.IdleRateHz <= 0 {
		cfg.IdleRateHz = def.IdleRateHz
	}
	if cfg.HighRateDuration <= 0 {
		cfg.HighRateDuration = def.HighRateDuration
	}
	if cfg.Port <= 0 {
		cfg.Port = def.Port
	}
	if cfg.BroadcastAddr == "" {
		cfg.BroadcastAddr = def.BroadcastAddr
	}
	if cfg.UniverseCount <= 0 || cfg.UniverseCount > MaxUniverses {
		cfg.UniverseCount = def.UniverseCount
	}

	s := &Service{
		universes:        make(map[int][]byte, cfg.UniverseCount),
		dirtyUniverses:   make(map[int]bool),
		enabled:          cfg.Enabled,
		broadcastAddr:    cfg.BroadcastAddr,
		port:             cfg.Port,
		refreshRateHz:    cfg.RefreshRateHz,
		idleRateHz:       cfg.IdleRateHz,
		highRateDuration: cfg.HighRateDuration,
		currentRate:      cfg.IdleRateHz,
		stopChan:         make(chan struct{}),
	}
	for i := 1; i <= cfg.UniverseCount; i++ {
		s.universes[i] = make([]byte, UniverseSize)
	}
	return s
}

// Initialize opens the Art-Net socket when output is enabled and starts transmission.
func (s *Service) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if s.enabled {
		addr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(s.broadcastAddr, strconv.Itoa(s.port)))
		if err != nil {
			return err
		}
		conn, err := net.DialUDP("udp4", nil, addr)
		if err != nil {
			return err
		}
		s.conn = conn

		log.Info().
			Int("universes", len(s.universes)).
			Str("broadcast", addr.String()).
			Int("activeHz", s.refreshRateHz).
			Int("idleHz", s.idleRateHz).
			Msg("DMX output started")
	} else {
		log.Info().Int("universes", len(s.universes)).Msg("DMX output started in simulation mode")
	}

	s.running = true
	go s.transmitLoop()
	return nil
}

// transmitLoop sends frames at the current adaptive rate until Stop.
func (s *Service) transmitLoop() {
	s.mu.RLock()
	lastRate := s.currentRate
	s.mu.RUnlock()

	ticker := time.NewTicker(time.Second / time.Duration(lastRate))
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			rate := s.processTransmission(time.Now())
			if rate != lastRate {
				ticker.Reset(time.Second / time.Duration(rate))
				lastRate = rate
			}
		}
	}
}

// processTransmission runs one transmission cycle and returns the rate to use next.
func (s *Service) processTransmission(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isDirty {
		s.lastChangeTime = now
		if !s.isInHighRateMode {
			s.isInHighRateMode = true
			s.currentRate = s.refreshRateHz
			log.Debug().Int("hz", s.refreshRateHz).Msg("DMX transmission switched to high rate")
		}
	} else if s.isInHighRateMode && !s.lastChangeTime.IsZero() && now.Sub(s.lastChangeTime) > s.highRateDuration {
		s.isInHighRateMode = false
		s.currentRate = s.idleRateHz
		log.Debug().Int("hz", s.idleRateHz).Msg("DMX transmission switched to idle rate")
	}

	if s.enabled && s.conn != nil {
		s.outputDMX()
	} else {
		s.isDirty = false
		clear(s.dirtyUniverses)
	}
	return s.currentRate
}

// outputDMX sends dirty universes, or every universe as keep-alive when nothing changed.
func (s *Service) outputDMX() {
	for universe, data := range s.universes {
		if s.isDirty && !s.dirtyUniverses[universe] {
			continue
		}
		s.sequence++
		packet := artnet.BuildDMXPacket(universe, data, s.sequence)
		if _, err := s.conn.Write(packet); err != nil {
			log.Warn().Err(err).Int("universe", universe).Msg("Art-Net send failed")
		}
	}
	s.isDirty = false
	clear(s.dirtyUniverses)
}

// setLocked writes one channel and reports whether it changed. Caller holds mu.
func (s *Service) setLocked(universe, channel int, value byte) bool {
	data := s.universes[universe]
	if data == nil || channel < 1 || channel > UniverseSize {
		return false
	}
	if data[channel-1] == value {
		return false
	}
	data[channel-1] = value
	s.isDirty = true
	s.dirtyUniverses[universe] = true
	return true
}

// markActive switches to the high rate after a change. Caller holds mu.
func (s *Service) markActive() {
	s.lastChangeTime = time.Now()
	if !s.isInHighRateMode {
		s.isInHighRateMode = true
		s.currentRate = s.refreshRateHz
	}
}

// SetChannelValue sets a channel value. Channels are 1-based.
func (s *Service) SetChannelValue(universe, channel int, value byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.setLocked(universe, channel, value) {
		s.markActive()
	}
}

// GetChannelValue returns the current value of a channel.
func (s *Service) GetChannelValue(universe, channel int) byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := s.universes[universe]
	if data == nil || channel < 1 || channel > UniverseSize {
		return 0
	}
	return data[channel-1]
}

// GetUniverse returns a copy of a universe's channels as ints, nil if the universe does
// not exist.
func (s *Service) GetUniverse(universe int) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := s.universes[universe]
	if data == nil {
		return nil
	}
	out := make([]int, UniverseSize)
	for i, v := range data {
		out[i] = int(v)
	}
	return out
}

// UniverseCount returns the number of configured universes.
func (s *Service) UniverseCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.universes)
}

// Blackout sets every channel to 0.
func (s *Service) Blackout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for universe, data := range s.universes {
		for i, v := range data {
			if v != 0 {
				data[i] = 0
				changed = true
				s.isDirty = true
				s.dirtyUniverses[universe] = true
			}
		}
	}
	if changed {
		s.markActive()
	}
}

// CountActiveChannels returns the number of non-zero channels.
func (s *Service) CountActiveChannels() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, data := range s.universes {
		for _, v := range data {
			if v > 0 {
				count++
			}
		}
	}
	return count
}

// IsEnabled returns whether Art-Net output is enabled.
func (s *Service) IsEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// IsActive returns whether the service is in high-rate mode.
func (s *Service) IsActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isInHighRateMode
}

// GetCurrentRate returns the current transmission rate in Hz.
func (s *Service) GetCurrentRate() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentRate
}

// Stop ends transmission, sends a final blackout and closes the socket.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	close(s.stopChan)
	s.running = false

	for universe := range s.universes {
		s.universes[universe] = make([]byte, UniverseSize)
	}
	if s.enabled && s.conn != nil {
		for universe, data := range s.universes {
			s.sequence++
			_, _ = s.conn.Write(artnet.BuildDMXPacket(universe, data, s.sequence))
		}
		_ = s.conn.Close()
		s.conn = nil
	}

	log.Info().Msg("DMX output stopped")
}
