package keaconfig

// HA modes supported by the configuration.
const (
	HAModeHotStandby    = "hot-standby"
	HAModeLoadBalancing = "load-balancing"
)

// Roles of the HA peers.
const (
	HARolePrimary   = "primary"
	HARoleSecondary = "secondary"
	HARoleStandby   = "standby"
)

// Name of the HA hook library file.
const HAHookLibraryName = "libdhcp_ha.so"

// A structure reflecting an array of high availability configurations
// for a Kea server. It is a top level HA library configuration.
type HALibraryParams struct {
	HA []HA `json:"high-availability"`
}

// A structure representing a single high availability configuration for
// a Kea server. It defines relations between several connected peers
// (e.g, primary, standby and a backup).
type HA struct {
	ThisServerName    *string `json:"this-server-name"`
	Mode              *string `json:"mode"`
	HeartbeatDelay    *int64  `json:"heartbeat-delay,omitempty"`
	MaxResponseDelay  *int64  `json:"max-response-delay,omitempty"`
	MaxAckDelay       *int64  `json:"max-ack-delay,omitempty"`
	MaxUnackedClients *int64  `json:"max-unacked-clients,omitempty"`
	Peers             []Peer  `json:"peers"`
}

// A structure representing one of the peers in the high avalability
// configuration (e.g., a standby server).
type Peer struct {
	Name         *string `json:"name"`
	URL          *string `json:"url"`
	Role         *string `json:"role"`
	AutoFailover *bool   `json:"auto-failover,omitempty"`
}

// Returns the roles the local server may take in the HA relationship
// working in a given mode. The second value is false if the mode is not
// supported.
func GetHARolesForMode(mode string) ([]string, bool) {
	switch mode {
	case HAModeHotStandby:
		return []string{HARolePrimary, HARoleStandby}, true
	case HAModeLoadBalancing:
		return []string{HARolePrimary, HARoleSecondary}, true
	default:
		return nil, false
	}
}

// Convenience function returning the first HA configuration.
func (params HALibraryParams) GetFirstRelationship() *HA {
	if len(params.HA) > 0 {
		return &params.HA[0]
	}
	return &HA{}
}

// Checks if the mandatory Kea HA configuration parameters are set. It doesn't
// check parameters consistency, though.
func (c HA) IsValid() bool {
	for _, p := range c.Peers {
		if !p.IsValid() {
			return false
		}
	}
	return c.ThisServerName != nil && c.Mode != nil
}

// Returns the peer configuration of this server.
func (c HA) GetThisPeer() (*Peer, bool) {
	if c.ThisServerName == nil {
		return nil, false
	}
	for i := range c.Peers {
		if c.Peers[i].Name != nil && *c.Peers[i].Name == *c.ThisServerName {
			return &c.Peers[i], true
		}
	}
	return nil, false
}

// Checks if the mandatory peer parameters are set. It doesn't check if the
// values are correct.
func (p Peer) IsValid() bool {
	return p.Name != nil && p.URL != nil && p.Role != nil
}
