package keaconfig

// Represents a D2 (DHCP-DDNS) Kea configuration. The DDNS domains and TSIG
// keys are generic trees with the Kea parameter names.
type D2Config struct {
	IPAddress        string         `json:"ip-address"`
	Port             int64          `json:"port"`
	DNSServerTimeout int64          `json:"dns-server-timeout"`
	NCRProtocol      *string        `json:"ncr-protocol,omitempty"`
	NCRFormat        *string        `json:"ncr-format,omitempty"`
	ControlSocket    *ControlSocket `json:"control-socket,omitempty"`
	TSIGKeys         []any          `json:"tsig-keys"`
	ForwardDDNS      map[string]any `json:"forward-ddns"`
	ReverseDDNS      map[string]any `json:"reverse-ddns"`
	HookLibraries    HookLibraries  `json:"hooks-libraries,omitempty"`
	Loggers          []Logger       `json:"loggers,omitempty"`
}

// Returns the hook libraries configured in the D2 server.
func (c *D2Config) GetHookLibraries() HookLibraries {
	return c.HookLibraries
}
