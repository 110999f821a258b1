package compiler

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/pkg/errors"
	keaconfig "isc.org/keaconverge/appcfg/kea"
	"isc.org/keaconverge/datamodel/daemonname"
	"isc.org/keaconverge/manifest"
	keautil "isc.org/keaconverge/util"
)

// Returns the name of this server in the HA relationship. The explicitly
// configured name takes precedence over the local FQDN.
func resolveThisServer(ha *manifest.HAConfig, localFqdn string) string {
	return keautil.ValueOr(ha.ThisServer, localFqdn)
}

// Returns the roles joined for the error message, e.g., 'primary' or
// 'standby'.
func formatRoles(roles []string) string {
	quoted := make([]string, 0, len(roles))
	for _, role := range roles {
		quoted = append(quoted, fmt.Sprintf("'%s'", role))
	}
	return strings.Join(quoted, " or ")
}

// Validates the HA configuration. The this_server must be one of the peers
// and its role must be permitted for the mode. The roles of the other
// peers are validated by Kea.
func validateHA(protocol daemonname.Name, ha *manifest.HAConfig, localFqdn string) error {
	roles, ok := keaconfig.GetHARolesForMode(ha.Mode)
	if !ok {
		return newConfigError(InvalidMode, protocol, ha.Mode,
			"HA mode '%s' is not supported, it must be '%s' or '%s'",
			ha.Mode, keaconfig.HAModeHotStandby, keaconfig.HAModeLoadBalancing)
	}

	var err error
	ha.Peers.ForEach(func(name string, peer manifest.PeerEntry) bool {
		if !govalidator.IsURL(peer.URL) {
			err = newConfigError(InvalidPeerURL, protocol, name,
				"HA peer '%s' has an invalid URL '%s'", name, peer.URL)
			return false
		}
		return true
	})
	if err != nil {
		return err
	}

	thisServer := resolveThisServer(ha, localFqdn)
	peer, ok := ha.Peers.Get(thisServer)
	if !ok {
		return newConfigError(UnknownServer, protocol, thisServer,
			"HA this_server '%s' must be one of the defined peers: %s",
			thisServer, strings.Join(ha.Peers.GetKeys(), ", "))
	}

	if !slices.Contains(roles, peer.Role) {
		return newConfigError(InvalidRoleForMode, protocol, thisServer,
			"HA mode '%s' requires roles %s for this_server '%s', got '%s'",
			ha.Mode, formatRoles(roles), thisServer, peer.Role)
	}
	return nil
}

// Returns the path of the HA hook library.
func getHAHookLibraryPath(ha *manifest.HAConfig, hooksDir string) string {
	if ha.HookLibrary != nil && *ha.HookLibrary != "" {
		return *ha.HookLibrary
	}
	return filepath.Join(hooksDir, keaconfig.HAHookLibraryName)
}

// Renders the HA hook library parameters. The peers keep the order from
// the manifest.
func renderHA(ha *manifest.HAConfig, localFqdn string) keaconfig.HALibraryParams {
	relationship := keaconfig.HA{
		ThisServerName:    keautil.Ptr(resolveThisServer(ha, localFqdn)),
		Mode:              keautil.Ptr(ha.Mode),
		HeartbeatDelay:    keautil.Ptr(keautil.ValueOr(ha.HeartbeatDelay, manifest.DefaultHAHeartbeatDelay)),
		MaxResponseDelay:  keautil.Ptr(keautil.ValueOr(ha.MaxResponseDelay, manifest.DefaultHAMaxResponseDelay)),
		MaxAckDelay:       keautil.Ptr(keautil.ValueOr(ha.MaxAckDelay, manifest.DefaultHAMaxAckDelay)),
		MaxUnackedClients: keautil.Ptr(keautil.ValueOr(ha.MaxUnackedClients, manifest.DefaultHAMaxUnackedClients)),
		Peers:             []keaconfig.Peer{},
	}
	ha.Peers.ForEach(func(name string, peer manifest.PeerEntry) bool {
		relationship.Peers = append(relationship.Peers, keaconfig.Peer{
			Name:         keautil.Ptr(name),
			URL:          keautil.Ptr(peer.URL),
			Role:         keautil.Ptr(peer.Role),
			AutoFailover: peer.AutoFailover,
		})
		return true
	})
	return keaconfig.HALibraryParams{
		HA: []keaconfig.HA{relationship},
	}
}

// Checks that the rendered relationship carries the mandatory parameters
// and that this server is one of its peers.
func checkRenderedHA(params keaconfig.HALibraryParams) error {
	relationship := params.GetFirstRelationship()
	if !relationship.IsValid() {
		return errors.New("rendered HA relationship lacks mandatory parameters")
	}
	if _, ok := relationship.GetThisPeer(); !ok {
		return errors.Errorf("rendered HA relationship has no peer named %s", *relationship.ThisServerName)
	}
	return nil
}
