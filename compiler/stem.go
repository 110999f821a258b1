package compiler

import (
	"regexp"
	"strings"

	"isc.org/keaconverge/datamodel/daemonname"
	"isc.org/keaconverge/manifest"
)

var dashRunRegexp = regexp.MustCompile(`-{2,}`)

// Returns the base name (without extension) of the subnet file. The
// subnet name is used verbatim if specified. Otherwise, the name is
// derived from the subnet prefix:
//
//	192.168.1.0/24  -> 192.168.1.0-24
//	2001:db8:1::/64 -> 2001-db8-1-64
func SubnetStem(protocol daemonname.Name, subnet manifest.Subnet) string {
	if subnet.Name != "" {
		return subnet.Name
	}
	prefix := strings.TrimSpace(subnet.GetPrefix())
	if protocol == daemonname.DHCPv6 {
		stem := strings.NewReplacer(":", "-", "/", "-").Replace(prefix)
		stem = dashRunRegexp.ReplaceAllString(stem, "-")
		return strings.Trim(stem, "-")
	}
	return strings.ReplaceAll(prefix, "/", "-")
}

// Checks if the stem can be used as a file name in the include directory.
func isValidStem(stem string) bool {
	switch stem {
	case "", ".", "..":
		return false
	}
	return !strings.ContainsAny(stem, "/\x00")
}
