package keaconfig

// Represents a client class definition in the Kea configuration.
type ClientClass struct {
	Name           string             `json:"name"`
	Test           string             `json:"test,omitempty"`
	OnlyIfRequired *bool              `json:"only-if-required,omitempty"`
	NextServer     string             `json:"next-server,omitempty"`
	BootFileName   string             `json:"boot-file-name,omitempty"`
	OptionData     []SingleOptionData `json:"option-data,omitempty"`
}
