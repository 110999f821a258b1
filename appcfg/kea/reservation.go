package keaconfig

// Represents host reservation within Kea configuration.
type Reservation struct {
	HWAddress      string             `json:"hw-address,omitempty"`
	DUID           string             `json:"duid,omitempty"`
	CircuitID      string             `json:"circuit-id,omitempty"`
	ClientID       string             `json:"client-id,omitempty"`
	FlexID         string             `json:"flex-id,omitempty"`
	IPAddress      string             `json:"ip-address,omitempty"`
	IPAddresses    []string           `json:"ip-addresses,omitempty"`
	Prefixes       []string           `json:"prefixes,omitempty"`
	Hostname       string             `json:"hostname,omitempty"`
	ClientClasses  []string           `json:"client-classes,omitempty"`
	NextServer     string             `json:"next-server,omitempty"`
	BootFileName   string             `json:"boot-file-name,omitempty"`
	ServerHostname string             `json:"server-hostname,omitempty"`
	OptionData     []SingleOptionData `json:"option-data,omitempty"`
}

// Returns the number of the host identifiers set in the reservation. Kea
// requires exactly one.
func (r Reservation) CountIdentifiers() int {
	count := 0
	for _, id := range []string{r.HWAddress, r.DUID, r.CircuitID, r.ClientID, r.FlexID} {
		if id != "" {
			count++
		}
	}
	return count
}
