package keautil

import (
	"bytes"
	"net"
	"strings"

	cidr "github.com/apparentlymart/go-cidr/cidr"
	"github.com/pkg/errors"
)

// IP protocol type.
type IPType int

// IP protocol type enum.
const (
	IPv4 IPType = 4
	IPv6 IPType = 6
)

// Structure returned by ParsePrefix function. It comprises the information
// about the parsed subnet prefix.
type ParsedPrefix struct {
	Protocol     IPType // Detected IP type: IPv4 or IPv6.
	PrefixLength int    // Network address mask.
	IPNet        *net.IPNet
}

// Parses a prefix in the CIDR notation, e.g., 192.0.2.0/24. The address
// must not have any bits set beyond the prefix length.
func ParsePrefix(prefix string) (*ParsedPrefix, error) {
	ip, ipNet, err := net.ParseCIDR(strings.TrimSpace(prefix))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid prefix %s", prefix)
	}
	if !ip.Equal(ipNet.IP) {
		return nil, errors.Errorf("prefix %s has host bits set, expected %s", prefix, ipNet.String())
	}
	parsed := &ParsedPrefix{
		IPNet: ipNet,
	}
	parsed.PrefixLength, _ = ipNet.Mask.Size()
	if ip.To4() != nil {
		parsed.Protocol = IPv4
	} else {
		parsed.Protocol = IPv6
	}
	return parsed, nil
}

// Returns lower and upper bound addresses of the address range. The address
// range may follow two conventions, e.g., 192.0.2.1 - 192.0.3.10
// or 192.0.2.0/24. Both IPv4 and IPv6 ranges are supported by this function.
func ParseIPRange(ipRange string) (net.IP, net.IP, error) {
	// Let's try to see if the range is specified as a pair of upper
	// and lower bound addresses.
	s := strings.Split(ipRange, "-")
	for i := 0; i < len(s); i++ {
		s[i] = strings.TrimSpace(s[i])
	}
	// The length of 2 means that the two addresses with hyphen were specified.
	switch len(s) {
	case 2:
		ips := []net.IP{}
		families := []int{}
		for _, ipStr := range s {
			// Check if the specified value is even an IP address.
			ip := net.ParseIP(ipStr)
			if ip == nil {
				// It is not an IP address. Bail...
				err := errors.Errorf("unable to parse the IP address %s", ipStr)
				return nil, nil, err
			}
			if ip.To4() != nil {
				families = append(families, 4)
			} else {
				families = append(families, 6)
			}
			ips = append(ips, ip)
			// If we already checked both addresses, let's compare their families.
			if (len(families) > 1) && (families[0] != families[1]) {
				// IPv4 and IPv6 address given. This is unacceptable.
				err := errors.Errorf("IP addresses in the IP range %s must belong to the same family",
					ipRange)
				return nil, nil, err
			}
		}
		if bytes.Compare(ips[0].To16(), ips[1].To16()) > 0 {
			return nil, nil, errors.Errorf("lower bound of the IP range %s is greater than the upper bound", ipRange)
		}
		return ips[0], ips[1], nil

	case 1:
		// There is one token only, so apparently this is a range provided as a prefix.
		_, network, err := net.ParseCIDR(s[0])
		if err != nil {
			err = errors.Errorf("unable to parse the pool prefix %s", s[0])
			return nil, nil, err
		}
		// For this prefix find an upper and lower bound address.
		lb, ub := cidr.AddressRange(network)
		return lb, ub, nil

	default:
		// No other formats for the address range are accepted.
		err := errors.Errorf("unable to parse the IP range %s", ipRange)
		return nil, nil, err
	}
}

// Checks if the whole address range between the lb (lower bound) and ub
// (upper bound) belongs to the prefix.
func (parsed *ParsedPrefix) ContainsRange(lb, ub net.IP) bool {
	first, last := cidr.AddressRange(parsed.IPNet)
	first, last = first.To16(), last.To16()
	lb, ub = lb.To16(), ub.To16()
	if lb == nil || ub == nil {
		return false
	}
	if (parsed.Protocol == IPv4) != (lb.To4() != nil) {
		return false
	}
	return bytes.Compare(lb, first) >= 0 && bytes.Compare(ub, last) <= 0
}
