package manifest

import (
	keautil "isc.org/keaconverge/util"
)

// Default locations of the files installed by the Kea packages.
const (
	DefaultConfigDir = "/etc/kea"
	DefaultHooksDir  = "/usr/lib/x86_64-linux-gnu/kea/hooks"
	DefaultRunDir    = "/var/run/kea"
	DefaultLogDir    = "/var/log/kea"
	DefaultLibDir    = "/var/lib/kea"
)

// Default values of the parameters not specified by the operator.
const (
	DefaultValidLifetime       int64 = 4000
	DefaultPreferredLifetime   int64 = 3000
	DefaultLeaseDatabaseType         = "memfile"
	DefaultDDNSIPAddress             = "127.0.0.1"
	DefaultDDNSPort            int64 = 53001
	DefaultDNSServerTimeout    int64 = 500
	DefaultHAHeartbeatDelay    int64 = 10000
	DefaultHAMaxResponseDelay  int64 = 60000
	DefaultHAMaxAckDelay       int64 = 5000
	DefaultHAMaxUnackedClients int64 = 5
	DefaultLogSeverity               = "INFO"
)

// The operator's description of the Kea deployment on a single host. It is
// decoded from a YAML file or a JSON file with comments.
type Manifest struct {
	ConfigDir string      `yaml:"config_dir"`
	HooksDir  string      `yaml:"hooks_dir"`
	RunDir    string      `yaml:"run_dir"`
	LogDir    string      `yaml:"log_dir"`
	LibDir    string      `yaml:"lib_dir"`
	DHCPv4    *DHCPConfig `yaml:"dhcp4"`
	DHCPv6    *DHCPConfig `yaml:"dhcp6"`
	DDNS      *DDNSConfig `yaml:"ddns"`
	// Shared networks are supplied in a separate data file.
	SharedNetworks *SharedNetworks `yaml:"-"`
}

// Global DHCPv4 or DHCPv6 server configuration.
type DHCPConfig struct {
	Enable                  bool                     `yaml:"enable"`
	Interfaces              []string                 `yaml:"interfaces"`
	ValidLifetime           *int64                   `yaml:"valid_lifetime"`
	PreferredLifetime       *int64                   `yaml:"preferred_lifetime"`
	RenewTimer              *int64                   `yaml:"renew_timer"`
	RebindTimer             *int64                   `yaml:"rebind_timer"`
	CalculateTeeTimes       *bool                    `yaml:"calculate_tee_times"`
	T1Percent               *float64                 `yaml:"t1_percent"`
	T2Percent               *float64                 `yaml:"t2_percent"`
	Allocator               *string                  `yaml:"allocator"`
	PDAllocator             *string                  `yaml:"pd_allocator"`
	StoreExtendedInfo       *bool                    `yaml:"store_extended_info"`
	DDNSSendUpdates         *bool                    `yaml:"ddns_send_updates"`
	DDNSQualifyingSuffix    *string                  `yaml:"ddns_qualifying_suffix"`
	DDNSReplaceClientName   *string                  `yaml:"ddns_replace_client_name"`
	DHCPDDNS                *DHCPDDNS                `yaml:"dhcp_ddns"`
	LeaseDatabase           *Database                `yaml:"lease_database"`
	ExpiredLeasesProcessing *ExpiredLeasesProcessing `yaml:"expired_leases_processing"`
	SanityChecks            *SanityChecks            `yaml:"sanity_checks"`
	ControlSocket           *ControlSocket           `yaml:"control_socket"`
	Logging                 *Logging                 `yaml:"logging"`
	OptionData              []OptionData             `yaml:"option_data"`
	ClientClasses           []ClientClass            `yaml:"client_classes"`
	HooksLibraries          []HookEntry              `yaml:"hooks_libraries"`
	HA                      *HAConfig                `yaml:"ha"`
	Subnets                 []Subnet                 `yaml:"subnets"`
}

// DHCP-DDNS daemon configuration. The DDNS domains and TSIG keys are
// generic trees translated to the Kea parameter names during rendering.
type DDNSConfig struct {
	Enable           bool           `yaml:"enable"`
	IPAddress        *string        `yaml:"ip_address"`
	Port             *int64         `yaml:"port"`
	DNSServerTimeout *int64         `yaml:"dns_server_timeout"`
	NCRProtocol      *string        `yaml:"ncr_protocol"`
	NCRFormat        *string        `yaml:"ncr_format"`
	ForwardDDNS      map[string]any `yaml:"forward_ddns"`
	ReverseDDNS      map[string]any `yaml:"reverse_ddns"`
	TSIGKeys         []any          `yaml:"tsig_keys"`
	ControlSocket    *ControlSocket `yaml:"control_socket"`
	Logging          *Logging       `yaml:"logging"`
	HooksLibraries   []HookEntry    `yaml:"hooks_libraries"`
}

// Connectivity between the DHCP server and the DHCP-DDNS daemon.
type DHCPDDNS struct {
	EnableUpdates bool    `yaml:"enable_updates"`
	ServerIP      *string `yaml:"server_ip"`
	ServerPort    *int64  `yaml:"server_port"`
	NCRProtocol   *string `yaml:"ncr_protocol"`
	NCRFormat     *string `yaml:"ncr_format"`
}

// Lease database connection.
type Database struct {
	Type        string  `yaml:"type"`
	Name        string  `yaml:"name"`
	Host        string  `yaml:"host"`
	Port        *int64  `yaml:"port"`
	User        string  `yaml:"user"`
	Password    string  `yaml:"password"`
	Persist     *bool   `yaml:"persist"`
	LFCInterval *int64  `yaml:"lfc_interval"`
	Path        *string `yaml:"path"`
}

// Lease reclamation timers.
type ExpiredLeasesProcessing struct {
	ReclaimTimerWaitTime        *int64 `yaml:"reclaim_timer_wait_time"`
	FlushReclaimedTimerWaitTime *int64 `yaml:"flush_reclaimed_timer_wait_time"`
	HoldReclaimedTime           *int64 `yaml:"hold_reclaimed_time"`
	MaxReclaimLeases            *int64 `yaml:"max_reclaim_leases"`
	MaxReclaimTime              *int64 `yaml:"max_reclaim_time"`
	UnwarnedReclaimCycles       *int64 `yaml:"unwarned_reclaim_cycles"`
}

type SanityChecks struct {
	LeaseChecks string `yaml:"lease_checks"`
}

// Control channel of the daemon. The unix socket in the run directory is
// used when it is not specified.
type ControlSocket struct {
	SocketType    string  `yaml:"socket_type"`
	SocketName    *string `yaml:"socket_name"`
	SocketAddress *string `yaml:"socket_address"`
	SocketPort    *int64  `yaml:"socket_port"`
}

// Logging of the daemon. The output defaults to a file in the log
// directory.
type Logging struct {
	Severity   string  `yaml:"severity"`
	DebugLevel int     `yaml:"debuglevel"`
	Output     string  `yaml:"output"`
	MaxSize    *int64  `yaml:"maxsize"`
	MaxVer     *int64  `yaml:"maxver"`
	Flush      *bool   `yaml:"flush"`
	Name       *string `yaml:"name"`
}

// DHCP option value.
type OptionData struct {
	Name       string `yaml:"name"`
	Code       uint16 `yaml:"code"`
	Space      string `yaml:"space"`
	Data       string `yaml:"data"`
	CSVFormat  *bool  `yaml:"csv_format"`
	AlwaysSend bool   `yaml:"always_send"`
}

// Client class definition.
type ClientClass struct {
	Name           string       `yaml:"name"`
	Test           string       `yaml:"test"`
	OnlyIfRequired *bool        `yaml:"only_if_required"`
	NextServer     string       `yaml:"next_server"`
	BootFileName   string       `yaml:"boot_file_name"`
	OptionData     []OptionData `yaml:"option_data"`
}

// A hook library loaded by the daemon. The parameters are passed to Kea
// verbatim.
type HookEntry struct {
	Library    string         `yaml:"library"`
	Parameters map[string]any `yaml:"parameters"`
}

// High Availability relationship of the DHCP server. The peers keep the
// declaration order.
type HAConfig struct {
	Mode              string                                `yaml:"mode"`
	ThisServer        *string                               `yaml:"this_server"`
	HeartbeatDelay    *int64                                `yaml:"heartbeat_delay"`
	MaxResponseDelay  *int64                                `yaml:"max_response_delay"`
	MaxAckDelay       *int64                                `yaml:"max_ack_delay"`
	MaxUnackedClients *int64                                `yaml:"max_unacked_clients"`
	HookLibrary       *string                               `yaml:"hook_library"`
	Peers             keautil.OrderedMap[string, PeerEntry] `yaml:"peers"`
}

// HA peer description.
type PeerEntry struct {
	URL          string `yaml:"url"`
	Role         string `yaml:"role"`
	AutoFailover *bool  `yaml:"auto_failover"`
}

// Subnet definition. The subnet prefix may be specified as subnet or cidr.
type Subnet struct {
	Name              string        `yaml:"name"`
	Subnet            string        `yaml:"subnet"`
	CIDR              string        `yaml:"cidr"`
	ID                int64         `yaml:"id"`
	Interface         string        `yaml:"interface"`
	ClientClass       string        `yaml:"client_class"`
	ValidLifetime     *int64        `yaml:"valid_lifetime"`
	PreferredLifetime *int64        `yaml:"preferred_lifetime"`
	RenewTimer        *int64        `yaml:"renew_timer"`
	RebindTimer       *int64        `yaml:"rebind_timer"`
	Pools             []Pool        `yaml:"pools"`
	PDPools           []PDPool      `yaml:"pd_pools"`
	OptionData        []OptionData  `yaml:"option_data"`
	Reservations      []Reservation `yaml:"reservations"`
}

// Returns the subnet prefix. The subnet parameter takes precedence over
// the cidr alias.
func (s Subnet) GetPrefix() string {
	if s.Subnet != "" {
		return s.Subnet
	}
	return s.CIDR
}

// Address pool.
type Pool struct {
	Pool        string       `yaml:"pool"`
	ClientClass string       `yaml:"client_class"`
	OptionData  []OptionData `yaml:"option_data"`
}

// Delegated prefix pool.
type PDPool struct {
	Prefix            string       `yaml:"prefix"`
	PrefixLen         int          `yaml:"prefix_len"`
	DelegatedLen      int          `yaml:"delegated_len"`
	ExcludedPrefix    string       `yaml:"excluded_prefix"`
	ExcludedPrefixLen int          `yaml:"excluded_prefix_len"`
	ClientClass       string       `yaml:"client_class"`
	OptionData        []OptionData `yaml:"option_data"`
}

// Host reservation.
type Reservation struct {
	HWAddress      string       `yaml:"hw_address"`
	DUID           string       `yaml:"duid"`
	CircuitID      string       `yaml:"circuit_id"`
	ClientID       string       `yaml:"client_id"`
	FlexID         string       `yaml:"flex_id"`
	IPAddress      string       `yaml:"ip_address"`
	IPAddresses    []string     `yaml:"ip_addresses"`
	Prefixes       []string     `yaml:"prefixes"`
	Hostname       string       `yaml:"hostname"`
	ClientClasses  []string     `yaml:"client_classes"`
	NextServer     string       `yaml:"next_server"`
	BootFileName   string       `yaml:"boot_file_name"`
	ServerHostname string       `yaml:"server_hostname"`
	OptionData     []OptionData `yaml:"option_data"`
}

// Sets the default directories.
func (m *Manifest) SetDefaults() {
	if m.ConfigDir == "" {
		m.ConfigDir = DefaultConfigDir
	}
	if m.HooksDir == "" {
		m.HooksDir = DefaultHooksDir
	}
	if m.RunDir == "" {
		m.RunDir = DefaultRunDir
	}
	if m.LogDir == "" {
		m.LogDir = DefaultLogDir
	}
	if m.LibDir == "" {
		m.LibDir = DefaultLibDir
	}
}
