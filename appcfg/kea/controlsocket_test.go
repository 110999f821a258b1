package keaconfig_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	keaconfig "isc.org/keaconverge/appcfg/kea"
	keautil "isc.org/keaconverge/util"
)

// Test the address and port of the unix control socket.
func TestControlSocketUnix(t *testing.T) {
	socket := keaconfig.ControlSocket{
		SocketType: "unix",
		SocketName: keautil.Ptr("/var/run/kea/kea-dhcp4-ctrl.sock"),
	}
	require.True(t, socket.IsUnix())
	require.Equal(t, "/var/run/kea/kea-dhcp4-ctrl.sock", socket.GetAddress())
	require.Zero(t, socket.GetPort())

	require.Empty(t, keaconfig.ControlSocket{}.GetAddress())
}

// Test the address and port of the HTTP control socket.
func TestControlSocketHTTP(t *testing.T) {
	socket := keaconfig.ControlSocket{SocketType: "http"}
	require.False(t, socket.IsUnix())
	require.Equal(t, "127.0.0.1", socket.GetAddress())
	require.EqualValues(t, 8000, socket.GetPort())

	socket.SocketAddress = keautil.Ptr("::")
	socket.SocketPort = keautil.Ptr(int64(8004))
	require.Equal(t, "::1", socket.GetAddress())
	require.EqualValues(t, 8004, socket.GetPort())

	socket.SocketAddress = keautil.Ptr("0.0.0.0")
	require.Equal(t, "127.0.0.1", socket.GetAddress())

	socket.SocketAddress = keautil.Ptr("192.0.2.1")
	require.Equal(t, "192.0.2.1", socket.GetAddress())
}
