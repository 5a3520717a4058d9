package network

import (
	"net"
	"testing"
)

func TestBroadcast(t *testing.T) {
	tests := []struct {
		name     string
		ip       net.IP
		mask     net.IPMask
		expected string
	}{
		{"/24", net.ParseIP("192.168.1.100"), net.IPv4Mask(255, 255, 255, 0), "192.168.1.255"},
		{"/16", net.ParseIP("172.16.5.10"), net.IPv4Mask(255, 255, 0, 0), "172.16.255.255"},
		{"/8", net.ParseIP("10.0.0.5"), net.IPv4Mask(255, 0, 0, 0), "10.255.255.255"},
		{"/28", net.ParseIP("192.168.1.20"), net.IPv4Mask(255, 255, 255, 240), "192.168.1.31"},
		{"/30", net.ParseIP("192.168.1.5"), net.IPv4Mask(255, 255, 255, 252), "192.168.1.7"},
		{"16-byte mask", net.ParseIP("2.0.0.1"), net.CIDRMask(104, 128), "2.255.255.255"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Broadcast(tt.ip, tt.mask)
			if result == nil {
				t.Fatalf("Broadcast returned nil")
			}
			if result.String() != tt.expected {
				t.Errorf("Broadcast(%s, %v) = %s, want %s", tt.ip, tt.mask, result, tt.expected)
			}
		})
	}
}

func TestBroadcast_InvalidInputs(t *testing.T) {
	if Broadcast(nil, net.IPv4Mask(255, 255, 255, 0)) != nil {
		t.Error("Broadcast(nil, mask) should return nil")
	}
	if Broadcast(net.ParseIP("192.168.1.1"), nil) != nil {
		t.Error("Broadcast(ip, nil) should return nil")
	}
	if Broadcast(net.ParseIP("::1"), net.IPv4Mask(255, 255, 255, 0)) != nil {
		t.Error("Broadcast(ipv6, mask) should return nil")
	}
	if Broadcast(net.ParseIP("10.0.0.1"), net.IPMask{255, 0}) != nil {
		t.Error("Broadcast with a 2-byte mask should return nil")
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		iface    string
		expected string
	}{
		{"en0", KindWiFi},
		{"en1", KindEthernet},
		{"eth0", KindEthernet},
		{"wlan0", KindWiFi},
		{"wlp2s0", KindWiFi},
		{"enp0s3", KindEthernet},
		{"eno1", KindEthernet},
		{"utun0", KindOther},
		{"bridge0", KindOther},
		{"lo0", KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.iface, func(t *testing.T) {
			if got := Kind(tt.iface); got != tt.expected {
				t.Errorf("Kind(%q) = %q, want %q", tt.iface, got, tt.expected)
			}
		})
	}
}

func TestTarget(t *testing.T) {
	_, ipNet, _ := net.ParseCIDR("192.168.1.0/24")
	ipNet.IP = net.ParseIP("192.168.1.42")

	got, ok := target("eth0", ipNet)
	if !ok {
		t.Fatal("target() rejected a valid IPv4 address")
	}
	if got.Broadcast != "192.168.1.255" || got.Address != "192.168.1.42" {
		t.Errorf("target() = %+v", got)
	}
	if got.Kind != KindEthernet || got.Name != "eth0-broadcast" {
		t.Errorf("target() = %+v", got)
	}

	// A /32 address is point-to-point.
	_, host, _ := net.ParseCIDR("10.0.0.1/32")
	if _, ok := target("utun0", host); ok {
		t.Error("target() should skip point-to-point addresses")
	}

	_, v6, _ := net.ParseCIDR("fe80::/64")
	if _, ok := target("eth0", v6); ok {
		t.Error("target() should skip IPv6 addresses")
	}
}

func TestTargets_EndWithLocalhostAndGlobal(t *testing.T) {
	targets, err := Targets()
	if err != nil {
		t.Fatalf("Targets() returned error: %v", err)
	}

	n := len(targets)
	if n < 2 {
		t.Fatalf("Targets() returned %d entries, want at least 2", n)
	}
	if targets[n-2].Name != "localhost" || targets[n-2].Broadcast != "127.0.0.1" {
		t.Errorf("Second to last target = %+v, want localhost", targets[n-2])
	}
	if targets[n-1].Name != "global-broadcast" || targets[n-1].Broadcast != "255.255.255.255" {
		t.Errorf("Last target = %+v, want global-broadcast", targets[n-1])
	}

	valid := map[string]bool{KindEthernet: true, KindWiFi: true, KindOther: true, KindLocalhost: true, KindGlobal: true}
	for _, tg := range targets {
		if tg.Name == "" || tg.Address == "" || tg.Broadcast == "" || tg.Description == "" {
			t.Errorf("Target has empty fields: %+v", tg)
		}
		if !valid[tg.Kind] {
			t.Errorf("Target kind %q is not valid", tg.Kind)
		}
	}
}
