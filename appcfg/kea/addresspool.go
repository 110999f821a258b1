package keaconfig

// Represents an address pool structure within Kea configuration.
type Pool struct {
	Pool        string             `json:"pool"`
	ClientClass string             `json:"client-class,omitempty"`
	OptionData  []SingleOptionData `json:"option-data,omitempty"`
}
