// Package artnet builds and parses Art-Net ArtDMX packets.
package artnet

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// OpCodeDMX is the Art-Net operation code for DMX data.
	OpCodeDMX uint16 = 0x5000
	// ProtocolVersion is the Art-Net protocol version.
	ProtocolVersion uint16 = 14
	// DMXDataLength is the number of DMX channels per universe.
	DMXDataLength uint16 = 512
	// PacketSize is the total size of an Art-Net DMX packet.
	PacketSize = 18 + DMXDataLength
	// DefaultPort is the standard Art-Net UDP port.
	DefaultPort = 6454
)

// ArtNetID is the Art-Net packet identifier.
var ArtNetID = []byte{'A', 'r', 't', '-', 'N', 'e', 't', 0x00}

// ErrNotArtDMX is returned when a datagram is not an ArtDMX packet.
var ErrNotArtDMX = errors.New("not an ArtDMX packet")

const headerSize = 18

// BuildDMXPacket creates an ArtDMX packet. Universe is 1-based as used throughout the
// application and is written 0-based on the wire. Channels beyond 512 are ignored and
// shorter slices are zero-padded. Receivers use sequence to reorder UDP datagrams.
func BuildDMXPacket(universe int, channels []byte, sequence byte) []byte {
	packet := make([]byte, PacketSize)

	copy(packet[0:8], ArtNetID)
	binary.LittleEndian.PutUint16(packet[8:10], OpCodeDMX)
	binary.BigEndian.PutUint16(packet[10:12], ProtocolVersion)
	packet[12] = sequence
	packet[13] = 0 // physical port
	binary.LittleEndian.PutUint16(packet[14:16], uint16(universe-1))
	binary.BigEndian.PutUint16(packet[16:18], DMXDataLength)

	copy(packet[headerSize:], channels[:min(len(channels), int(DMXDataLength))])
	return packet
}

// ParseDMXPacket decodes an ArtDMX packet into a 1-based universe, the sequence number
// and a 512-byte channel slice. Shorter data payloads are zero-padded.
func ParseDMXPacket(packet []byte) (universe int, sequence byte, channels []byte, err error) {
	if len(packet) < headerSize || !bytes.Equal(packet[0:8], ArtNetID) {
		return 0, 0, nil, ErrNotArtDMX
	}
	if op := binary.LittleEndian.Uint16(packet[8:10]); op != OpCodeDMX {
		return 0, 0, nil, fmt.Errorf("%w: opcode 0x%04x", ErrNotArtDMX, op)
	}

	length := int(binary.BigEndian.Uint16(packet[16:18]))
	if length > int(DMXDataLength) || headerSize+length > len(packet) {
		return 0, 0, nil, fmt.Errorf("invalid ArtDMX data length %d for %d byte packet", length, len(packet))
	}

	channels = make([]byte, DMXDataLength)
	copy(channels, packet[headerSize:headerSize+length])
	universe = int(binary.LittleEndian.Uint16(packet[14:16])) + 1
	return universe, packet[12], channels, nil
}
