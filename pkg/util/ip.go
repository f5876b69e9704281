package util

import (
	"net"
	"regexp"
	"strings"
)

// IsValidIPv4 checks if a string is a valid IPv4 address
func IsValidIPv4(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	return ip != nil && ip.To4() != nil
}

var parseInterfaceRegexp = regexp.MustCompile(`^([A-Za-z-]+)(\d.*)$`)

// ParseInterfaceName extracts interface type and number
// Returns ("Ethernet", "1/1") for Ethernet1/1
func ParseInterfaceName(name string) (ifType string, num string) {
	matches := parseInterfaceRegexp.FindStringSubmatch(strings.TrimSpace(name))
	if len(matches) == 3 {
		return matches[1], matches[2]
	}
	return name, ""
}

var (
	// shortToLong maps abbreviations to the long names devices print in
	// JSON output (EOS style).
	shortToLong = map[string]string{
		"et":           "Ethernet",
		"eth":          "Ethernet",
		"ethernet":     "Ethernet",
		"po":           "Port-Channel",
		"portchannel":  "Port-Channel",
		"port-channel": "Port-Channel",
		"lo":           "Loopback",
		"loopback":     "Loopback",
		"vl":           "Vlan",
		"vlan":         "Vlan",
		"ma":           "Management",
		"mgmt":         "Management",
		"management":   "Management",
		"vx":           "Vxlan",
		"vxlan":        "Vxlan",
	}
)

// NormalizeInterfaceName expands abbreviated interface names so that
// inputs and device output compare equal.
// Et1 -> Ethernet1, po10 -> Port-Channel10, Ma1 -> Management1
func NormalizeInterfaceName(name string) string {
	ifType, num := ParseInterfaceName(name)
	if num == "" {
		return strings.TrimSpace(name)
	}
	if long, ok := shortToLong[strings.ToLower(ifType)]; ok {
		return long + num
	}
	return ifType + num
}
