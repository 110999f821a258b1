package keactrl

import "isc.org/keaconverge/datamodel/daemonname"

const Lease4GetAll CommandName = "lease4-get-all"

// Constants representing the lease states in Kea.
const (
	LeaseStateDefault          = 0
	LeaseStateDeclined         = 1
	LeaseStateExpiredReclaimed = 2
	LeaseStateReleased         = 3
)

// Represents a DHCPv4 lease fetched from Kea.
type Lease4 struct {
	ClientID      string `json:"client-id,omitempty"`
	CLTT          uint64 `json:"cltt,omitempty"`
	FqdnFwd       bool   `json:"fqdn-fwd,omitempty"`
	FqdnRev       bool   `json:"fqdn-rev,omitempty"`
	Hostname      string `json:"hostname,omitempty"`
	HWAddress     string `json:"hw-address,omitempty"`
	IPAddress     string `json:"ip-address,omitempty"`
	State         int    `json:"state,omitempty"`
	SubnetID      uint32 `json:"subnet-id,omitempty"`
	ValidLifetime uint32 `json:"valid-lft,omitempty"`
}

// Arguments of the response to the lease4-get-all command.
type Lease4GetAllRespArgs struct {
	Leases []Lease4 `json:"leases"`
}

// Creates lease4-get-all command. The leases from all subnets are returned
// when no subnet identifiers are specified.
func NewCommandLease4GetAll(daemonName daemonname.Name, subnetIDs ...int64) *Command {
	command := NewCommandBase(Lease4GetAll, daemonName)
	if len(subnetIDs) > 0 {
		command = command.WithArgument("subnets", subnetIDs)
	}
	return command
}
