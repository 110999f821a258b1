package keautil_test

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	keautil "isc.org/keaconverge/util"
)

// Test that the IPv4 prefix is parsed.
func TestParsePrefix4(t *testing.T) {
	parsed, err := keautil.ParsePrefix("192.168.1.0/24")
	require.NoError(t, err)
	require.Equal(t, keautil.IPv4, parsed.Protocol)
	require.Equal(t, 24, parsed.PrefixLength)
	require.Equal(t, "192.168.1.0/24", parsed.IPNet.String())
}

// Test that the IPv6 prefix is parsed.
func TestParsePrefix6(t *testing.T) {
	parsed, err := keautil.ParsePrefix(" 2001:db8:1::/64 ")
	require.NoError(t, err)
	require.Equal(t, keautil.IPv6, parsed.Protocol)
	require.Equal(t, 64, parsed.PrefixLength)
}

// Test that the malformed prefixes are rejected.
func TestParsePrefixInvalid(t *testing.T) {
	for _, prefix := range []string{"", "192.168.1.0", "192.168.1.0/33", "foo/24", "2001:db8::/129"} {
		_, err := keautil.ParsePrefix(prefix)
		require.Error(t, err, prefix)
	}
}

// Test that the prefix with host bits set is rejected.
func TestParsePrefixHostBits(t *testing.T) {
	_, err := keautil.ParsePrefix("192.168.1.7/24")
	require.ErrorContains(t, err, "host bits set, expected 192.168.1.0/24")
}

// Test parsing the IPv4 address range given as two addresses.
func TestParseIPRange4(t *testing.T) {
	lb, ub, err := keautil.ParseIPRange("192.0.2.10 - 192.0.2.100")
	require.NoError(t, err)
	require.Equal(t, "192.0.2.10", lb.String())
	require.Equal(t, "192.0.2.100", ub.String())
}

// Test parsing the IPv6 address range given as a prefix.
func TestParseIPRangePrefix(t *testing.T) {
	lb, ub, err := keautil.ParseIPRange("2001:db8:1::/120")
	require.NoError(t, err)
	require.Equal(t, "2001:db8:1::", lb.String())
	require.Equal(t, "2001:db8:1::ff", ub.String())
}

// Test that the invalid ranges are rejected.
func TestParseIPRangeInvalid(t *testing.T) {
	for _, ipRange := range []string{
		"192.0.2.100 - 192.0.2.10",
		"192.0.2.1 - 2001:db8::1",
		"192.0.2.1 - foo",
		"192.0.2.1 - 192.0.2.2 - 192.0.2.3",
		"foo",
	} {
		_, _, err := keautil.ParseIPRange(ipRange)
		require.Error(t, err, ipRange)
	}
}

// Test checking if the address range belongs to the prefix.
func TestPrefixContainsRange(t *testing.T) {
	parsed, err := keautil.ParsePrefix("192.0.2.0/24")
	require.NoError(t, err)

	require.True(t, parsed.ContainsRange(net.ParseIP("192.0.2.0"), net.ParseIP("192.0.2.255")))
	require.True(t, parsed.ContainsRange(net.ParseIP("192.0.2.10"), net.ParseIP("192.0.2.20")))
	require.False(t, parsed.ContainsRange(net.ParseIP("192.0.2.10"), net.ParseIP("192.0.3.1")))
	require.False(t, parsed.ContainsRange(net.ParseIP("192.0.1.255"), net.ParseIP("192.0.2.1")))
	require.False(t, parsed.ContainsRange(net.ParseIP("2001:db8::1"), net.ParseIP("2001:db8::2")))
	require.False(t, parsed.ContainsRange(nil, nil))
}
