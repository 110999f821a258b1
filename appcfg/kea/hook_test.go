package keaconfig_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	keaconfig "isc.org/keaconverge/appcfg/kea"
)

// Test that the HA hook library parameters are decoded from the located
// library entry.
func TestHookLibrariesHAParameters(t *testing.T) {
	// Arrange
	var libraries keaconfig.HookLibraries
	err := json.Unmarshal([]byte(`[
		{"library": "/usr/lib/kea/hooks/libdhcp_lease_cmds.so"},
		{
			"library": "/usr/lib/kea/hooks/libdhcp_ha.so",
			"parameters": {
				"high-availability": [{
					"this-server-name": "server1.example.com",
					"mode": "hot-standby",
					"peers": [
						{"name": "server1.example.com", "url": "http://192.168.1.10:8000/", "role": "primary"},
						{"name": "server2.example.com", "url": "http://192.168.1.11:8000/", "role": "standby", "auto-failover": true}
					]
				}]
			}
		}
	]`), &libraries)
	require.NoError(t, err)

	// Act
	i := libraries.IndexOf(keaconfig.HAHookLibraryName)
	var params keaconfig.HALibraryParams
	decodeErr := json.Unmarshal(libraries[i].Parameters, &params)

	// Assert
	require.Equal(t, 1, i)
	require.NoError(t, decodeErr)
	relationship := params.GetFirstRelationship()
	require.True(t, relationship.IsValid())
	require.Equal(t, "hot-standby", *relationship.Mode)
	require.Len(t, relationship.Peers, 2)
	require.True(t, *relationship.Peers[1].AutoFailover)
	require.Nil(t, relationship.Peers[0].AutoFailover)
	require.Equal(t, -1, libraries.IndexOf("libdhcp_stat_cmds"))
}

// Test that the missing relationship is reported as invalid.
func TestHALibraryParamsEmpty(t *testing.T) {
	var params keaconfig.HALibraryParams
	require.False(t, params.GetFirstRelationship().IsValid())
}

// Test that the library name must match the file name rather than any part
// of the path.
func TestHookLibraryIndexOfMatchesFileName(t *testing.T) {
	libraries := keaconfig.HookLibraries{
		{Library: "/opt/libdhcp_ha/libdhcp_lease_cmds.so"},
		{Library: "libdhcp_ha.so"},
	}

	require.Equal(t, 1, libraries.IndexOf("libdhcp_ha"))
	require.Zero(t, libraries.IndexOf("libdhcp_lease_cmds"))
	require.True(t, libraries[1].Is(keaconfig.HAHookLibraryName))
	require.False(t, libraries[0].Is("opt"))
}

// Test that the hook library parameters are omitted when not specified.
func TestHookLibraryMarshalWithoutParameters(t *testing.T) {
	content, err := json.Marshal(keaconfig.HookLibrary{Library: "/usr/lib/kea/hooks/libdhcp_lease_cmds.so"})
	require.NoError(t, err)
	require.JSONEq(t, `{"library": "/usr/lib/kea/hooks/libdhcp_lease_cmds.so"}`, string(content))
}
