// Package network lists the broadcast addresses Art-Net output can be pointed at.
package network

import (
	"fmt"
	"net"
	"strings"
)

// Interface kinds, in the order Targets lists them.
const (
	KindEthernet  = "ethernet"
	KindWiFi      = "wifi"
	KindOther     = "other"
	KindLocalhost = "localhost"
	KindGlobal    = "global"
)

// Target is one candidate Art-Net broadcast destination.
type Target struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Broadcast   string `json:"broadcast"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

// Kind guesses an interface's kind from its name.
func Kind(ifaceName string) string {
	name := strings.ToLower(ifaceName)

	// en0 is WiFi on most Macs
	if name == "en0" {
		return KindWiFi
	}
	switch {
	case strings.HasPrefix(name, "wl"), strings.Contains(name, "wifi"), strings.Contains(name, "wireless"):
		return KindWiFi
	case strings.HasPrefix(name, "eth"), strings.HasPrefix(name, "en"):
		return KindEthernet
	}
	return KindOther
}

// Broadcast computes the IPv4 broadcast address for ip/mask. It returns nil for IPv6
// or a malformed mask.
func Broadcast(ip net.IP, mask net.IPMask) net.IP {
	if ip == nil || mask == nil {
		return nil
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return nil
	}
	if len(mask) == net.IPv6len {
		mask = mask[12:]
	}
	if len(mask) != net.IPv4len {
		return nil
	}

	out := make(net.IP, net.IPv4len)
	for i := range out {
		out[i] = ip4[i] | ^mask[i]
	}
	return out
}

// Targets returns every usable broadcast destination: ethernet first, then WiFi and
// other interfaces, then localhost and the global broadcast address.
func Targets() ([]Target, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to get network interfaces: %w", err)
	}

	byKind := make(map[string][]Target)
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if t, ok := target(iface.Name, addr); ok {
				byKind[t.Kind] = append(byKind[t.Kind], t)
			}
		}
	}

	var out []Target
	for _, kind := range []string{KindEthernet, KindWiFi, KindOther} {
		out = append(out, byKind[kind]...)
	}
	return append(out, fixedTargets()...), nil
}

// target builds the Target for one interface address.
func target(ifaceName string, addr net.Addr) (Target, bool) {
	ipNet, ok := addr.(*net.IPNet)
	if !ok {
		return Target{}, false
	}
	ip4 := ipNet.IP.To4()
	if ip4 == nil {
		return Target{}, false
	}
	bcast := Broadcast(ip4, ipNet.Mask)
	// Point-to-point links have no broadcast address.
	if bcast == nil || bcast.Equal(ip4) {
		return Target{}, false
	}

	kind := Kind(ifaceName)
	return Target{
		Name:        ifaceName + "-broadcast",
		Address:     ip4.String(),
		Broadcast:   bcast.String(),
		Kind:        kind,
		Description: fmt.Sprintf("%s %s broadcast (%s)", ifaceName, kind, bcast),
	}, true
}

func fixedTargets() []Target {
	return []Target{
		{
			Name:        "localhost",
			Address:     "127.0.0.1",
			Broadcast:   "127.0.0.1",
			Kind:        KindLocalhost,
			Description: "Localhost (for testing only)",
		},
		{
			Name:        "global-broadcast",
			Address:     "0.0.0.0",
			Broadcast:   "255.255.255.255",
			Kind:        KindGlobal,
			Description: "Global broadcast (255.255.255.255)",
		},
	}
}
