package keaconfig

// Interfaces the DHCP server listens on.
type InterfacesConfig struct {
	Interfaces []string `json:"interfaces"`
}

// Lease reclamation parameters.
type ExpiredLeasesProcessing struct {
	ReclaimTimerWaitTime        *int64 `json:"reclaim-timer-wait-time,omitempty"`
	FlushReclaimedTimerWaitTime *int64 `json:"flush-reclaimed-timer-wait-time,omitempty"`
	HoldReclaimedTime           *int64 `json:"hold-reclaimed-time,omitempty"`
	MaxReclaimLeases            *int64 `json:"max-reclaim-leases,omitempty"`
	MaxReclaimTime              *int64 `json:"max-reclaim-time,omitempty"`
	UnwarnedReclaimCycles       *int64 `json:"unwarned-reclaim-cycles,omitempty"`
}

// Lease sanity checking performed when the leases are loaded.
type SanityChecks struct {
	LeaseChecks string `json:"lease-checks"`
}

// Connectivity between the DHCP server and the DHCP-DDNS daemon.
type DHCPDDNS struct {
	EnableUpdates bool    `json:"enable-updates"`
	ServerIP      *string `json:"server-ip,omitempty"`
	ServerPort    *int64  `json:"server-port,omitempty"`
	NCRProtocol   *string `json:"ncr-protocol,omitempty"`
	NCRFormat     *string `json:"ncr-format,omitempty"`
}

// Global parameters common for the DHCPv4 and DHCPv6 servers.
type CommonDHCPConfig struct {
	InterfacesConfig        InterfacesConfig         `json:"interfaces-config"`
	ControlSocket           *ControlSocket           `json:"control-socket,omitempty"`
	LeaseDatabase           *Database                `json:"lease-database,omitempty"`
	ExpiredLeasesProcessing *ExpiredLeasesProcessing `json:"expired-leases-processing,omitempty"`
	SanityChecks            *SanityChecks            `json:"sanity-checks,omitempty"`
	ValidLifetime           *int64                   `json:"valid-lifetime,omitempty"`
	RenewTimer              *int64                   `json:"renew-timer,omitempty"`
	RebindTimer             *int64                   `json:"rebind-timer,omitempty"`
	CalculateTeeTimes       *bool                    `json:"calculate-tee-times,omitempty"`
	T1Percent               *float64                 `json:"t1-percent,omitempty"`
	T2Percent               *float64                 `json:"t2-percent,omitempty"`
	Allocator               *string                  `json:"allocator,omitempty"`
	StoreExtendedInfo       *bool                    `json:"store-extended-info,omitempty"`
	DDNSSendUpdates         *bool                    `json:"ddns-send-updates,omitempty"`
	DDNSQualifyingSuffix    *string                  `json:"ddns-qualifying-suffix,omitempty"`
	DDNSReplaceClientName   *string                  `json:"ddns-replace-client-name,omitempty"`
	DHCPDDNS                *DHCPDDNS                `json:"dhcp-ddns,omitempty"`
	OptionData              []SingleOptionData       `json:"option-data,omitempty"`
	ClientClasses           []ClientClass            `json:"client-classes,omitempty"`
	HookLibraries           HookLibraries            `json:"hooks-libraries,omitempty"`
	Loggers                 []Logger                 `json:"loggers,omitempty"`
}

// Represents the DHCPv4 server configuration. The subnets and shared
// networks are kept in separate files.
type DHCPv4Config struct {
	CommonDHCPConfig
	Subnet4        Include `json:"subnet4"`
	SharedNetworks Include `json:"shared-networks"`
}

// Represents the DHCPv6 server configuration. The subnets and shared
// networks are kept in separate files.
type DHCPv6Config struct {
	CommonDHCPConfig
	PreferredLifetime *int64  `json:"preferred-lifetime,omitempty"`
	PDAllocator       *string `json:"pd-allocator,omitempty"`
	Subnet6           Include `json:"subnet6"`
	SharedNetworks    Include `json:"shared-networks"`
}

// Returns the hook libraries configured in the DHCPv4 server.
func (c *DHCPv4Config) GetHookLibraries() HookLibraries {
	return c.HookLibraries
}

// Returns the hook libraries configured in the DHCPv6 server.
func (c *DHCPv6Config) GetHookLibraries() HookLibraries {
	return c.HookLibraries
}
