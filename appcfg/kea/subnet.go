package keaconfig

// Parameters common for the DHCPv4 and DHCPv6 subnets.
type CommonSubnetParameters struct {
	ID            int64              `json:"id,omitempty"`
	Subnet        string             `json:"subnet"`
	Interface     string             `json:"interface,omitempty"`
	ClientClass   string             `json:"client-class,omitempty"`
	ValidLifetime *int64             `json:"valid-lifetime,omitempty"`
	RenewTimer    *int64             `json:"renew-timer,omitempty"`
	RebindTimer   *int64             `json:"rebind-timer,omitempty"`
	Pools         []Pool             `json:"pools,omitempty"`
	OptionData    []SingleOptionData `json:"option-data,omitempty"`
	Reservations  []Reservation      `json:"reservations,omitempty"`
}

// Represents a DHCPv4 subnet in the Kea configuration.
type Subnet4 struct {
	CommonSubnetParameters
}

// Represents a DHCPv6 subnet in the Kea configuration.
type Subnet6 struct {
	CommonSubnetParameters
	PreferredLifetime *int64   `json:"preferred-lifetime,omitempty"`
	PDPools           []PDPool `json:"pd-pools,omitempty"`
}
