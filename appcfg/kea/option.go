package keaconfig

// Top level DHCP option spaces.
const (
	DHCPv4OptionSpace = "dhcp4"
	DHCPv6OptionSpace = "dhcp6"
)

// Represents a DHCP option in the Kea configuration.
type SingleOptionData struct {
	AlwaysSend bool   `json:"always-send,omitempty"`
	Code       uint16 `json:"code,omitempty"`
	CSVFormat  *bool  `json:"csv-format,omitempty"`
	Data       string `json:"data,omitempty"`
	Name       string `json:"name,omitempty"`
	Space      string `json:"space,omitempty"`
}
