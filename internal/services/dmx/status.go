package dmx

import (
	"net"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Status is a point-in-time view of the output.
type Status struct {
	Enabled        bool   `json:"enabled"`
	BroadcastAddr  string `json:"broadcastAddress"`
	Port           int    `json:"port"`
	Universes      int    `json:"universes"`
	CurrentRateHz  int    `json:"currentRateHz"`
	HighRate       bool   `json:"highRate"`
	ActiveChannels int    `json:"activeChannels"`
}

// Status returns the current output state.
func (s *Service) Status() Status {
	active := s.CountActiveChannels()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		Enabled:        s.enabled,
		BroadcastAddr:  s.broadcastAddr,
		Port:           s.port,
		Universes:      len(s.universes),
		CurrentRateHz:  s.currentRate,
		HighRate:       s.isInHighRateMode,
		ActiveChannels: active,
	}
}

// SetBroadcastAddress points Art-Net output at a new address and enables output. The
// previous socket is closed first; on error output stays off.
func (s *Service) SetBroadcastAddress(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}

	addr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(address, strconv.Itoa(s.port)))
	if err != nil {
		s.enabled = false
		return err
	}
	conn, err := net.DialUDP("udp4", nil, addr)
	if err != nil {
		s.enabled = false
		return err
	}

	s.conn = conn
	s.broadcastAddr = address
	s.enabled = true
	// Resend every universe to the new target.
	s.isDirty = false
	clear(s.dirtyUniverses)
	log.Info().Str("broadcast", addr.String()).Msg("Art-Net broadcast address updated")
	return nil
}

// DisableOutput closes the Art-Net socket. Universes keep rendering.
func (s *Service) DisableOutput() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	s.enabled = false
	log.Info().Msg("Art-Net output disabled")
}
