package daemonname

// Defines the consistent names of the Kea daemons we render configurations
// for. They are intended to be used throughout the codebase. This package
// should not import any packages from this repository to avoid possible
// circular dependencies.
type Name string

const (
	DHCPv4 Name = "dhcp4"
	DHCPv6 Name = "dhcp6"
	D2     Name = "d2"
)

// Returns all daemon names in the order they are processed during
// the convergence.
func All() []Name {
	return []Name{DHCPv4, DHCPv6, D2}
}

// Indicates if the daemon name is a DHCP daemon name.
func (dn Name) IsDHCP() bool {
	switch dn {
	case DHCPv4, DHCPv6:
		return true
	default:
		return false
	}
}

// Returns the IP protocol version served by the DHCP daemon or 0 for
// the non-DHCP daemons.
func (dn Name) Universe() int {
	switch dn {
	case DHCPv4:
		return 4
	case DHCPv6:
		return 6
	default:
		return 0
	}
}

// Returns the name of the top-level key in the daemon's configuration.
func (dn Name) RootKey() string {
	switch dn {
	case DHCPv4:
		return "Dhcp4"
	case DHCPv6:
		return "Dhcp6"
	case D2:
		return "DhcpDdns"
	default:
		return ""
	}
}

// Returns the name of the daemon executable. It is used to check the
// configuration syntax with the -t switch.
func (dn Name) Binary() string {
	switch dn {
	case DHCPv4:
		return "kea-dhcp4"
	case DHCPv6:
		return "kea-dhcp6"
	case D2:
		return "kea-dhcp-ddns"
	default:
		return ""
	}
}

// Returns the base name of the main configuration file of the daemon.
func (dn Name) ConfigFileName() string {
	if binary := dn.Binary(); binary != "" {
		return binary + ".conf"
	}
	return ""
}

// Returns the name used in the log files and the lease files of the
// daemon, e.g., kea-dhcp4.
func (dn Name) LoggerName() string {
	return dn.Binary()
}

// Parses the daemon name from string. The "ddns" alias is accepted for
// the D2 daemon. It returns false if the daemon name is not recognized.
func Parse(name string) (Name, bool) {
	switch name {
	case string(DHCPv4):
		return DHCPv4, true
	case string(DHCPv6):
		return DHCPv6, true
	case string(D2), "ddns":
		return D2, true
	default:
		return Name(""), false
	}
}
