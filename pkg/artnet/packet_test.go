package artnet

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestBuildDMXPacket_Header(t *testing.T) {
	tests := []struct {
		name         string
		universe     int
		wantUniverse uint16
	}{
		{"Universe 1", 1, 0},
		{"Universe 4", 4, 3},
		{"Universe 16", 16, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packet := BuildDMXPacket(tt.universe, make([]byte, 512), 123)

			if len(packet) != int(PacketSize) {
				t.Errorf("packet size = %d, want %d", len(packet), PacketSize)
			}
			if got := string(packet[0:8]); got != "Art-Net\x00" {
				t.Errorf("ID = %q", got)
			}
			if got := binary.LittleEndian.Uint16(packet[8:10]); got != OpCodeDMX {
				t.Errorf("OpCode = 0x%04x, want 0x%04x", got, OpCodeDMX)
			}
			if got := binary.BigEndian.Uint16(packet[10:12]); got != ProtocolVersion {
				t.Errorf("Protocol Version = %d, want %d", got, ProtocolVersion)
			}
			if packet[12] != 123 {
				t.Errorf("Sequence = %d, want 123", packet[12])
			}
			if got := binary.LittleEndian.Uint16(packet[14:16]); got != tt.wantUniverse {
				t.Errorf("Universe = %d, want %d", got, tt.wantUniverse)
			}
			if got := binary.BigEndian.Uint16(packet[16:18]); got != 512 {
				t.Errorf("Length = %d, want 512", got)
			}
		})
	}
}

func TestBuildDMXPacket_ChannelData(t *testing.T) {
	channels := make([]byte, 600)
	channels[0] = 255
	channels[100] = 128
	channels[511] = 64
	channels[512] = 99 // beyond one universe

	packet := BuildDMXPacket(1, channels, 0)

	if packet[18] != 255 || packet[118] != 128 || packet[529] != 64 {
		t.Errorf("channel data not copied: %d %d %d", packet[18], packet[118], packet[529])
	}
	if len(packet) != int(PacketSize) {
		t.Errorf("oversized input changed packet size to %d", len(packet))
	}
}

func TestBuildDMXPacket_ShortAndEmpty(t *testing.T) {
	packet := BuildDMXPacket(1, []byte{100, 200}, 0)
	if packet[18] != 100 || packet[19] != 200 || packet[20] != 0 {
		t.Errorf("short input not zero-padded: %v", packet[18:21])
	}

	empty := BuildDMXPacket(1, nil, 0)
	for i := 18; i < int(PacketSize); i++ {
		if empty[i] != 0 {
			t.Fatalf("channel at offset %d = %d, want 0", i-18, empty[i])
		}
	}
}

func TestParseDMXPacket_RoundTrip(t *testing.T) {
	channels := make([]byte, 512)
	channels[0], channels[255], channels[511] = 1, 2, 3

	universe, seq, data, err := ParseDMXPacket(BuildDMXPacket(3, channels, 42))
	if err != nil {
		t.Fatalf("ParseDMXPacket() error: %v", err)
	}
	if universe != 3 || seq != 42 {
		t.Errorf("universe=%d seq=%d, want 3 and 42", universe, seq)
	}
	if data[0] != 1 || data[255] != 2 || data[511] != 3 {
		t.Errorf("channel data mismatch")
	}
}

func TestParseDMXPacket_ShortPayload(t *testing.T) {
	packet := BuildDMXPacket(1, []byte{7, 8}, 1)[:20]
	binary.BigEndian.PutUint16(packet[16:18], 2)

	_, _, data, err := ParseDMXPacket(packet)
	if err != nil {
		t.Fatalf("ParseDMXPacket() error: %v", err)
	}
	if len(data) != 512 || data[0] != 7 || data[1] != 8 || data[2] != 0 {
		t.Errorf("unexpected data %v", data[:3])
	}
}

func TestParseDMXPacket_Invalid(t *testing.T) {
	valid := BuildDMXPacket(1, nil, 0)

	wrongOp := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint16(wrongOp[8:10], 0x2000)

	badLength := append([]byte(nil), valid...)
	binary.BigEndian.PutUint16(badLength[16:18], 600)

	truncated := valid[:100]

	tests := []struct {
		name      string
		packet    []byte
		notArtDMX bool
	}{
		{"too short", []byte("Art"), true},
		{"wrong id", append([]byte("Art-Nex\x00"), valid[8:]...), true},
		{"poll opcode", wrongOp, true},
		{"length too large", badLength, false},
		{"truncated data", truncated, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := ParseDMXPacket(tt.packet)
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := errors.Is(err, ErrNotArtDMX); got != tt.notArtDMX {
				t.Errorf("errors.Is(ErrNotArtDMX) = %v, want %v", got, tt.notArtDMX)
			}
		})
	}
}
